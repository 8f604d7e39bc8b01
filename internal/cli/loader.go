package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"speckit/internal/compiler"
	"speckit/internal/ir"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeCompile     = "E008" // Spec document failed to compile
)

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadResult contains the results of loading spec documents from a
// project root.
type LoadResult struct {
	Set       *ir.SpecSet
	FileCount int // Number of CUE files found across all spec directories
}

// LoadSpecs loads every spec document under root into one SpecSet: model
// and event documents from <root>/shared/spec, domain documents from each
// <root>/services/<service>/spec. The result is compiled IR only; callers
// run compiler.ValidateSet before handing the set to resolution or
// emission.
func LoadSpecs(root string, mode LoadMode) (*LoadResult, []error) {
	var errs []error
	result := &LoadResult{Set: &ir.SpecSet{}}

	sharedDir := filepath.Join(root, "shared", "spec")
	value, count, loadErr := buildInstance(sharedDir)
	if loadErr != nil {
		return nil, []error{loadErr}
	}
	result.FileCount += count

	compileShared(value, result.Set, mode, &errs)
	if len(errs) > 0 && mode == LoadModeFailFast {
		return result, errs
	}

	services, scanErr := specServices(root)
	if scanErr != nil {
		errs = append(errs, scanErr)
		return result, errs
	}
	for _, service := range services {
		dir := filepath.Join(root, "services", service, "spec")
		value, count, loadErr := buildInstance(dir)
		if loadErr != nil {
			errs = append(errs, loadErr)
			if mode == LoadModeFailFast {
				return result, errs
			}
			continue
		}
		result.FileCount += count

		compileDomains(service, value, result.Set, mode, &errs)
		if len(errs) > 0 && mode == LoadModeFailFast {
			return result, errs
		}
	}

	if len(result.Set.Models) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no models found in spec documents"})
	}

	return result, errs
}

// buildInstance loads and builds the CUE instance rooted at dir.
func buildInstance(dir string) (cue.Value, int, *LoadError) {
	var zero cue.Value

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return zero, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("spec directory not found: %s", dir)}
	}
	if err != nil {
		return zero, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing spec directory: %v", err)}
	}
	if !info.IsDir() {
		return zero, 0, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return zero, 0, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return zero, 0, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return zero, 0, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return zero, 0, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return zero, 0, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}
	return value, len(cueFiles), nil
}

// compileShared extracts models, events and the module config from the
// shared spec value.
func compileShared(value cue.Value, set *ir.SpecSet, mode LoadMode, errs *[]error) {
	moduleVal := value.LookupPath(cue.ParsePath("config.module"))
	if moduleVal.Exists() {
		if module, err := moduleVal.String(); err == nil {
			set.Module = module
		}
	}

	modelsVal := value.LookupPath(cue.ParsePath("model"))
	if modelsVal.Exists() {
		iter, iterErr := modelsVal.Fields()
		if iterErr != nil {
			*errs = append(*errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating models: %v", iterErr)})
			if mode == LoadModeFailFast {
				return
			}
		} else {
			for iter.Next() {
				spec, compileErr := compiler.CompileModel(iter.Value())
				if compileErr != nil {
					*errs = append(*errs, convertCompileError(compileErr, "model."+iter.Label()))
					if mode == LoadModeFailFast {
						return
					}
					continue
				}
				set.Models = append(set.Models, *spec)
			}
		}
	}

	eventsVal := value.LookupPath(cue.ParsePath("event"))
	if eventsVal.Exists() {
		iter, iterErr := eventsVal.Fields()
		if iterErr != nil {
			*errs = append(*errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating events: %v", iterErr)})
			if mode == LoadModeFailFast {
				return
			}
		} else {
			for iter.Next() {
				channel := iter.Label()
				spec, compileErr := compiler.CompileEvent(channel, iter.Value())
				if compileErr != nil {
					*errs = append(*errs, convertCompileError(compileErr, "event."+channel))
					if mode == LoadModeFailFast {
						return
					}
					continue
				}
				set.Events = append(set.Events, *spec)
			}
		}
	}
}

// compileDomains extracts the domain documents of one service.
func compileDomains(service string, value cue.Value, set *ir.SpecSet, mode LoadMode, errs *[]error) {
	domainsVal := value.LookupPath(cue.ParsePath("domain"))
	if !domainsVal.Exists() {
		return
	}
	iter, iterErr := domainsVal.Fields()
	if iterErr != nil {
		*errs = append(*errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating domains: %v", iterErr)})
		return
	}
	for iter.Next() {
		spec, compileErr := compiler.CompileDomain(service, iter.Value())
		if compileErr != nil {
			*errs = append(*errs, convertCompileError(compileErr, service+".domain."+iter.Label()))
			if mode == LoadModeFailFast {
				return
			}
			continue
		}
		set.Domains = append(set.Domains, *spec)
	}
}

// specServices lists service directories under <root>/services that carry
// a spec/ subdirectory, sorted for deterministic load order.
func specServices(root string) ([]string, *LoadError) {
	servicesDir := filepath.Join(root, "services")
	entries, err := os.ReadDir(servicesDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning %s: %v", servicesDir, err)}
	}

	var services []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		specDir := filepath.Join(servicesDir, entry.Name(), "spec")
		if info, err := os.Stat(specDir); err == nil && info.IsDir() {
			services = append(services, entry.Name())
		}
	}
	sort.Strings(services)
	return services, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompile,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}
