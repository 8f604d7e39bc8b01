package reconcile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"speckit/internal/emitter"
	"speckit/internal/ir"
)

// Check computes the full drift set between the registry and the tree
// under root. It never writes. Findings are collected completely, never
// truncated at the first problem, and follow registry declaration order.
func Check(root string, reg *ir.Registry) (*Report, error) {
	report := &Report{}

	for _, svc := range reg.Services {
		if !hasTemplate(root, svc.Type) {
			report.addFinding(FindingUnknownType, svc.Name, "",
				fmt.Sprintf("service %q: no scaffold template for type %q", svc.Name, svc.Type))
			continue
		}

		dir := filepath.Join("services", svc.Name)
		if _, err := os.Stat(filepath.Join(root, dir)); os.IsNotExist(err) {
			report.addFinding(FindingMissingDirectory, svc.Name, dir,
				fmt.Sprintf("service %q has no directory", svc.Name))
			continue
		} else if err != nil {
			return nil, fmt.Errorf("stat %s: %w", dir, err)
		}
		report.addExisting(dir)

		required, err := requiredFiles(root, svc)
		if err != nil {
			return nil, err
		}
		for _, rf := range required {
			if _, err := os.Stat(filepath.Join(root, rf.path)); os.IsNotExist(err) {
				report.addFinding(FindingMissingFile, svc.Name, rf.path,
					fmt.Sprintf("required file for service %q is missing", svc.Name))
			} else if err != nil {
				return nil, fmt.Errorf("stat %s: %w", rf.path, err)
			} else {
				report.addExisting(rf.path)
			}
		}
	}

	for _, key := range composeKeys {
		stale, err := markerDiverges(root, reg, key)
		if err != nil {
			return nil, err
		}
		if stale {
			report.addFinding(FindingStaleMarker, "", markerFile(key),
				"managed region differs from registry-rendered content")
		} else {
			report.addExisting(markerFile(key))
		}
	}

	return report, nil
}

// Create materializes every missing artifact and rewrites diverged marker
// regions. Existing files and directories are left byte-for-byte
// untouched. A registry type with no scaffold template aborts the whole
// run before anything is written.
func Create(root string, reg *ir.Registry) (*Report, error) {
	var unknown []string
	for _, svc := range reg.Services {
		if !hasTemplate(root, svc.Type) {
			unknown = append(unknown, fmt.Sprintf("%s (type %q)", svc.Name, svc.Type))
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("no scaffold template for: %s", strings.Join(unknown, ", "))
	}

	report := &Report{}

	for _, svc := range reg.Services {
		dir := filepath.Join("services", svc.Name)
		if _, err := os.Stat(filepath.Join(root, dir)); os.IsNotExist(err) {
			if err := materializeTree(root, svc, filepath.Join(root, dir)); err != nil {
				return nil, fmt.Errorf("scaffold %s: %w", dir, err)
			}
			report.addCreated(dir)
		} else if err != nil {
			return nil, fmt.Errorf("stat %s: %w", dir, err)
		} else {
			report.addExisting(dir)
		}

		required, err := requiredFiles(root, svc)
		if err != nil {
			return nil, err
		}
		for _, rf := range required {
			dest := filepath.Join(root, rf.path)
			if _, err := os.Stat(dest); err == nil {
				report.addExisting(rf.path)
				continue
			} else if !os.IsNotExist(err) {
				return nil, fmt.Errorf("stat %s: %w", rf.path, err)
			}
			content, err := rf.render()
			if err != nil {
				return nil, err
			}
			if err := emitter.WriteFileAtomic(dest, content); err != nil {
				return nil, err
			}
			report.addCreated(rf.path)
		}
	}

	for _, key := range composeKeys {
		updated, err := rewriteMarker(root, reg, key)
		if err != nil {
			return nil, err
		}
		if updated {
			report.addCreated(markerFile(key))
		} else {
			report.addExisting(markerFile(key))
		}
	}

	return report, nil
}

// expectedMarkerContent renders the compose file with its managed region
// replaced by the registry-derived block.
func expectedMarkerContent(root string, reg *ir.Registry, key string) (current, expected []byte, err error) {
	path := filepath.Join(root, markerFile(key))
	current, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", markerFile(key), err)
	}
	block, err := composeBlock(root, reg.Services, key)
	if err != nil {
		return nil, nil, err
	}
	expected, err = SpliceMarkers(current, block)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", markerFile(key), err)
	}
	return current, expected, nil
}

func markerDiverges(root string, reg *ir.Registry, key string) (bool, error) {
	current, expected, err := expectedMarkerContent(root, reg, key)
	if err != nil {
		return false, err
	}
	return !bytes.Equal(current, expected), nil
}

// rewriteMarker rewrites the managed region when it diverges. Matching
// files keep their bytes and modification time.
func rewriteMarker(root string, reg *ir.Registry, key string) (bool, error) {
	current, expected, err := expectedMarkerContent(root, reg, key)
	if err != nil {
		return false, err
	}
	if bytes.Equal(current, expected) {
		return false, nil
	}
	if err := emitter.WriteFileAtomic(filepath.Join(root, markerFile(key)), expected); err != nil {
		return false, err
	}
	return true, nil
}
