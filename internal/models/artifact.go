package models

// WritePolicy controls how the workspace resolves an existing file at
// the artifact's target path.
type WritePolicy int

const (
	// Replace any prior run's output
	OverwriteAllowed WritePolicy = iota
	// Never replace; retry with a numbered suffix instead
	OverwriteForbidden
)

// Artifact is one fully composed output: a relative name, its file
// contents, and the conflict policy the workspace applies when writing.
// Serializers build the whole artifact in memory and hand it over once;
// it is never mutated after the write.
type Artifact struct {
	// Artifact kind for the caller's report ("perspective", "macro", ...)
	Kind string

	// File or directory name relative to the colleague folder,
	// without any conflict suffix
	Name string

	// Payload keyed by path relative to Name. A single-file artifact
	// uses the empty key.
	Files map[string][]byte

	Policy WritePolicy
}

// SingleFile builds an artifact whose payload is one file named Name.
func SingleFile(kind, name string, data []byte, policy WritePolicy) *Artifact {
	return &Artifact{
		Kind:   kind,
		Name:   name,
		Files:  map[string][]byte{"": data},
		Policy: policy,
	}
}
