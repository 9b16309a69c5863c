package identity

// Environment is the deployment environment a process runs in.
type Environment string

const (
	Test        Environment = "test"
	Development Environment = "development"
	Production  Environment = "production"
)

// DefaultEnvironment applies when no source names an environment.
const DefaultEnvironment = Development

// Environments returns every accepted environment in declaration order.
func Environments() []Environment {
	return []Environment{Test, Development, Production}
}

// ParseEnvironment trims and lowercases raw and accepts exactly one of the
// known environments.
func ParseEnvironment(raw string) (Environment, error) {
	candidate := Environment(normalize(raw))
	for _, env := range Environments() {
		if candidate == env {
			return env, nil
		}
	}

	accepted := make([]string, 0, len(Environments()))
	for _, env := range Environments() {
		accepted = append(accepted, string(env))
	}
	return "", &ValidationError{Field: "environment", Value: raw, Accepted: accepted}
}

func (e Environment) String() string {
	return string(e)
}

// FileName is the segment inserted into environment-scoped file names.
func (e Environment) FileName() string {
	return kebab(string(e))
}

// EnvPrefix is the segment inserted into environment-scoped variable prefixes.
func (e Environment) EnvPrefix() string {
	return upperSnake(string(e))
}

// MarshalText implements encoding.TextMarshaler.
func (e Environment) MarshalText() ([]byte, error) {
	return []byte(e), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseEnvironment.
func (e *Environment) UnmarshalText(text []byte) error {
	parsed, err := ParseEnvironment(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}
