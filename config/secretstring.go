package config

// SecretStringValue replaces secret values in dumps and logs.
const SecretStringValue = "<secret>"

// SecretString holds credentials which must not be visible in configuration
// dumps, debug reports or logs.
type SecretString string

func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte(`"` + SecretStringValue + `"`), nil
}

func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

// String keeps secret out of fmt and zap.Stringer output.
func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretStringValue
}

// Reveal returns actual value.
func (s SecretString) Reveal() string {
	return string(s)
}
