package models

// ColleagueProfile is the immutable input for one pipeline run.
type ColleagueProfile struct {
	// Display name, used verbatim in artifacts and (sanitized) in file names
	FullName string
	// Lookup key for the directory collaborator, never embedded in artifacts
	Handle string
	// Raw photo bytes; nil when the directory lookup found no photo
	Photo []byte
}

// HasPhoto reports whether a source photo is available for icon conversion
func (c *ColleagueProfile) HasPhoto() bool {
	return len(c.Photo) > 0
}
