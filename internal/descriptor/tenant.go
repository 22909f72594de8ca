package descriptor

import "strings"

// Tenant is the context a descriptor is rendered for. Descriptor text fields may
// contain the placeholders ${TENANT}, ${PLATFORM} and ${REALM}.
type Tenant struct {
	Name     string `yaml:"name" json:"name" mapstructure:"name"`
	Platform string `yaml:"platform" json:"platform" mapstructure:"platform"`
	Realm    string `yaml:"realm,omitempty" json:"realm,omitempty" mapstructure:"realm"`
}

// Expand substitutes the tenant placeholders in s
func (t Tenant) Expand(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return strings.NewReplacer(
		"${TENANT}", t.Name,
		"${PLATFORM}", t.Platform,
		"${REALM}", t.Realm,
	).Replace(s)
}

func (t Tenant) expandMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = t.Expand(v)
	}
	return out
}

// String returns "tenant@platform"
func (t Tenant) String() string {
	if t.Platform == "" {
		return t.Name
	}
	return t.Name + "@" + t.Platform
}
