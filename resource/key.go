package resource

// Key identifies one logical resource independent of the file or set that
// produced it. Keys are comparable; equality, not identity, means "same resource".
type Key struct {
	Type       ResourceType
	Qualifiers string
	Name       string
}

// String returns the canonical form "type[-qualifiers]/name",
// e.g. "drawable-ldpi/icon" or "string/app_name".
func (k Key) String() string {
	if k.Qualifiers == "" {
		return string(k.Type) + "/" + k.Name
	}
	return string(k.Type) + "-" + k.Qualifiers + "/" + k.Name
}
