package config

const SecretStringValue = "<secret>"

// SecretString is a value that must not show up in logs or dumps.
type SecretString string

func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte("\"" + SecretStringValue + "\""), nil
}

func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretStringValue
}

// Value is the actual secret.
func (s SecretString) Value() string {
	return string(s)
}
