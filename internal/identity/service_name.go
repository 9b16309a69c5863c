package identity

// ServiceName is a sanitised, lowercased service identifier.
type ServiceName struct {
	value string
}

// ParseServiceName trims and lowercases raw. It fails unless the result
// contains at least one letter or digit, so both derived forms are non-empty.
func ParseServiceName(raw string) (ServiceName, error) {
	value := normalize(raw)
	if upperSnake(value) == "" {
		return ServiceName{}, &ValidationError{Field: "service name", Value: raw}
	}
	return ServiceName{value: value}, nil
}

func (n ServiceName) String() string {
	return n.value
}

// IsZero reports whether n was never parsed.
func (n ServiceName) IsZero() bool {
	return n.value == ""
}

// FileName is the kebab-case stem used for configuration files.
func (n ServiceName) FileName() string {
	return kebab(n.value)
}

// EnvPrefix is the UPPER_SNAKE_CASE stem used for environment variables.
func (n ServiceName) EnvPrefix() string {
	return upperSnake(n.value)
}
