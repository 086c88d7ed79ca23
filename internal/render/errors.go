package render

import "fmt"

// ConfigurationError reports an unresolvable name in a shader-pack
// configuration: a resource, bind group, push constant, blend preset,
// or geometry kind that nothing provides. It is always fatal for the
// compile or frame that hit it.
type ConfigurationError struct {
	Pipeline string
	Detail   string
}

func (e *ConfigurationError) Error() string {
	if e.Pipeline == "" {
		return fmt.Sprintf("configuration error: %s", e.Detail)
	}
	return fmt.Sprintf("configuration error in pipeline '%s': %s", e.Pipeline, e.Detail)
}

func configErrorf(pipeline, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Pipeline: pipeline, Detail: fmt.Sprintf(format, args...)}
}

// UnknownResourceError reports a binding request against a resource id
// the registry has no backing for.
type UnknownResourceError struct {
	ID string
}

func (e *UnknownResourceError) Error() string {
	return fmt.Sprintf("unknown resource '%s'", e.ID)
}
