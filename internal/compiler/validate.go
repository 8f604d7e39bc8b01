package compiler

import (
	"fmt"
	"strings"

	"speckit/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Model errors (E101-E104)
	ErrUnknownFieldType   = "E101" // type string outside the closed set
	ErrDuplicateName      = "E102" // duplicate field/variant/operation/model/channel name
	ErrVariantUnknownRef  = "E103" // variant references unknown field
	ErrUnknownModelRef    = "E104" // operation or event references unknown model

	// Operation errors (E105-E109)
	ErrInvalidHTTPMethod  = "E105" // method outside GET/POST/PUT/PATCH/DELETE
	ErrInvalidParamSource = "E106" // parameter source outside path/query
	ErrMissingTransport   = "E107" // operation has neither rest nor events
	ErrUnboundChannel     = "E108" // operation references channel with no event binding
	ErrInvalidDefault     = "E109" // default literal not representable for the field type

	// Event errors (E110-E112)
	ErrEventDirection     = "E110" // channel direction does not allow the declared use
	ErrPublishNeedsOutput = "E111" // publish_on_success on an operation without output
	ErrSubscribeParams    = "E112" // subscribing operation declares path/query params
)

// validHTTPMethods is the closed method set operations may declare.
var validHTTPMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports ModelSpec, DomainSpec and EventMessageSpec.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.ModelSpec:
		return validateModel(spec)
	case ir.ModelSpec:
		return validateModel(&spec)
	case *ir.DomainSpec:
		return validateDomain(spec)
	case ir.DomainSpec:
		return validateDomain(&spec)
	case *ir.EventMessageSpec:
		return validateEvent(spec)
	case ir.EventMessageSpec:
		return validateEvent(&spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// ValidateSet validates a whole SpecSet: every model, domain and event plus
// the cross-references between them. All-or-nothing: callers must not hand
// a set with a nonempty result to the resolver or emitter.
func ValidateSet(set *ir.SpecSet) []ValidationError {
	var errs []ValidationError

	modelNames := make(map[string]bool)
	for i := range set.Models {
		model := &set.Models[i]
		if modelNames[model.Name] {
			errs = append(errs, ValidationError{
				Field:   "models." + model.Name,
				Message: fmt.Sprintf("duplicate model name: %q", model.Name),
				Code:    ErrDuplicateName,
			})
		}
		modelNames[model.Name] = true
		errs = append(errs, validateModel(model)...)
	}

	channels := make(map[string]bool)
	for i := range set.Events {
		event := &set.Events[i]
		if channels[event.Channel] {
			errs = append(errs, ValidationError{
				Field:   "events." + event.Channel,
				Message: fmt.Sprintf("duplicate event channel: %q", event.Channel),
				Code:    ErrDuplicateName,
			})
		}
		channels[event.Channel] = true
		errs = append(errs, validateEvent(event)...)
	}

	domainKeys := make(map[string]bool)
	for i := range set.Domains {
		domain := &set.Domains[i]
		key := domain.Service + "/" + domain.Name
		if domainKeys[key] {
			errs = append(errs, ValidationError{
				Field:   "domains." + key,
				Message: fmt.Sprintf("duplicate domain %q in service %q", domain.Name, domain.Service),
				Code:    ErrDuplicateName,
			})
		}
		domainKeys[key] = true
		errs = append(errs, validateDomain(domain)...)
	}

	errs = append(errs, validateReferences(set)...)
	return errs
}

func validateModel(model *ir.ModelSpec) []ValidationError {
	var errs []ValidationError

	fieldNames := make(map[string]bool)
	for _, field := range model.Fields {
		path := fmt.Sprintf("models.%s.fields.%s", model.Name, field.Name)

		if fieldNames[field.Name] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("duplicate field name: %q", field.Name),
				Code:    ErrDuplicateName,
			})
		}
		fieldNames[field.Name] = true

		if _, ok := ir.ParseType(field.Type.String()); !ok {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("unknown type %q for field %q", field.Type.String(), field.Name),
				Code:    ErrUnknownFieldType,
			})
		}

		if field.Default != nil {
			if msg := checkDefault(field.Type, field.Default); msg != "" {
				errs = append(errs, ValidationError{
					Field:   path,
					Message: msg,
					Code:    ErrInvalidDefault,
				})
			}
		}
	}

	variantNames := make(map[string]bool)
	for _, variant := range model.Variants {
		path := fmt.Sprintf("models.%s.variants.%s", model.Name, variant.Name)

		if variantNames[variant.Name] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("duplicate variant name: %q", variant.Name),
				Code:    ErrDuplicateName,
			})
		}
		variantNames[variant.Name] = true

		for set, refs := range map[string][]string{
			"exclude":  variant.Exclude,
			"optional": variant.Optional,
			"include":  variant.Include,
		} {
			for _, ref := range refs {
				if !fieldNames[ref] {
					errs = append(errs, ValidationError{
						Field:   path + "." + set,
						Message: fmt.Sprintf("variant %q references unknown field %q", variant.Name, ref),
						Code:    ErrVariantUnknownRef,
					})
				}
			}
		}
	}

	return errs
}

func validateDomain(domain *ir.DomainSpec) []ValidationError {
	var errs []ValidationError

	opNames := make(map[string]bool)
	for i := range domain.Operations {
		op := &domain.Operations[i]
		path := fmt.Sprintf("domains.%s/%s.operations.%s", domain.Service, domain.Name, op.Name)

		if opNames[op.Name] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("duplicate operation name: %q", op.Name),
				Code:    ErrDuplicateName,
			})
		}
		opNames[op.Name] = true

		if op.Rest == nil && op.Events == nil {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("operation %q must declare a rest or events transport", op.Name),
				Code:    ErrMissingTransport,
			})
		}

		if op.Rest != nil && !validHTTPMethods[op.Rest.Method] {
			errs = append(errs, ValidationError{
				Field:   path + ".rest.method",
				Message: fmt.Sprintf("invalid HTTP method %q, must be GET, POST, PUT, PATCH or DELETE", op.Rest.Method),
				Code:    ErrInvalidHTTPMethod,
			})
		}

		if op.Events != nil && op.Events.Subscribe != "" && len(op.Params) > 0 {
			errs = append(errs, ValidationError{
				Field:   path + ".params",
				Message: fmt.Sprintf("operation %q subscribes to %q and cannot declare path/query params", op.Name, op.Events.Subscribe),
				Code:    ErrSubscribeParams,
			})
		}

		if op.Events != nil && op.Events.PublishOnSuccess != "" && op.Output == "" {
			errs = append(errs, ValidationError{
				Field:   path + ".events.publish_on_success",
				Message: fmt.Sprintf("operation %q declares publish_on_success but has no output model", op.Name),
				Code:    ErrPublishNeedsOutput,
			})
		}

		for _, param := range op.Params {
			pPath := path + ".params." + param.Name
			if param.Source != ir.ParamSourcePath && param.Source != ir.ParamSourceQuery {
				errs = append(errs, ValidationError{
					Field:   pPath,
					Message: fmt.Sprintf("invalid parameter source %q, must be \"path\" or \"query\"", param.Source),
					Code:    ErrInvalidParamSource,
				})
			}
			if _, ok := ir.ParseType(param.Type.String()); !ok {
				errs = append(errs, ValidationError{
					Field:   pPath,
					Message: fmt.Sprintf("unknown type %q for parameter %q", param.Type.String(), param.Name),
					Code:    ErrUnknownFieldType,
				})
			}
			if param.Default != nil {
				if msg := checkDefault(param.Type, param.Default); msg != "" {
					errs = append(errs, ValidationError{
						Field:   pPath,
						Message: msg,
						Code:    ErrInvalidDefault,
					})
				}
			}
		}
	}

	return errs
}

func validateEvent(event *ir.EventMessageSpec) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(event.Message) == "" {
		errs = append(errs, ValidationError{
			Field:   "events." + event.Channel,
			Message: fmt.Sprintf("event %q must bind a message model", event.Channel),
			Code:    ErrUnknownModelRef,
		})
	}
	if !event.Publish && !event.Subscribe {
		errs = append(errs, ValidationError{
			Field:   "events." + event.Channel,
			Message: fmt.Sprintf("event %q must have publish: true or subscribe: true (or both)", event.Channel),
			Code:    ErrEventDirection,
		})
	}

	return errs
}

// validateReferences checks model and channel references across the set.
func validateReferences(set *ir.SpecSet) []ValidationError {
	var errs []ValidationError
	known := set.ModelNames()

	for _, event := range set.Events {
		if event.Message != "" && !known[event.Message] {
			errs = append(errs, ValidationError{
				Field:   "events." + event.Channel,
				Message: fmt.Sprintf("event %q: unknown message model %q", event.Channel, event.Message),
				Code:    ErrUnknownModelRef,
			})
		}
	}

	for _, domain := range set.Domains {
		for i := range domain.Operations {
			op := &domain.Operations[i]
			path := fmt.Sprintf("domains.%s/%s.operations.%s", domain.Service, domain.Name, op.Name)

			if op.Input != "" && !known[op.Input] {
				errs = append(errs, ValidationError{
					Field:   path + ".input",
					Message: fmt.Sprintf("operation %q: unknown input model %q", op.Name, op.Input),
					Code:    ErrUnknownModelRef,
				})
			}
			if base := op.BaseOutput(); base != "" && !known[base] {
				errs = append(errs, ValidationError{
					Field:   path + ".output",
					Message: fmt.Sprintf("operation %q: unknown output model %q", op.Name, base),
					Code:    ErrUnknownModelRef,
				})
			}

			if op.Events == nil {
				continue
			}
			for _, check := range []struct {
				key       string
				channel   string
				subscribe bool
			}{
				{"subscribe", op.Events.Subscribe, true},
				{"publish_on_success", op.Events.PublishOnSuccess, false},
				{"publish_on_error", op.Events.PublishOnError, false},
			} {
				if check.channel == "" {
					continue
				}
				event := set.Event(check.channel)
				if event == nil {
					errs = append(errs, ValidationError{
						Field:   path + ".events." + check.key,
						Message: fmt.Sprintf("operation %q references channel %q with no event binding", op.Name, check.channel),
						Code:    ErrUnboundChannel,
					})
					continue
				}
				if check.subscribe && !event.Subscribe {
					errs = append(errs, ValidationError{
						Field:   path + ".events." + check.key,
						Message: fmt.Sprintf("channel %q is not declared subscribable", check.channel),
						Code:    ErrEventDirection,
					})
				}
				if !check.subscribe && !event.Publish {
					errs = append(errs, ValidationError{
						Field:   path + ".events." + check.key,
						Message: fmt.Sprintf("channel %q is not declared publishable", check.channel),
						Code:    ErrEventDirection,
					})
				}
			}
		}
	}

	return errs
}

// checkDefault verifies a default literal is representable for the type.
// Returns an error message, or "" when the literal fits.
func checkDefault(typ ir.TypeRef, def any) string {
	if !typ.IsScalar() {
		return fmt.Sprintf("default not supported for type %q", typ.String())
	}
	ok := false
	switch typ.Name {
	case ir.TypeString:
		_, ok = def.(string)
	case ir.TypeBool:
		_, ok = def.(bool)
	case ir.TypeInt:
		_, ok = def.(int64)
	case ir.TypeFloat:
		switch def.(type) {
		case float64, int64:
			ok = true
		}
	case ir.TypeUUID, ir.TypeDatetime:
		return fmt.Sprintf("default not supported for type %q", typ.Name)
	}
	if !ok {
		return fmt.Sprintf("default literal %v does not match type %q", def, typ.String())
	}
	return ""
}
