package model

// AllTags is the controlled tag vocabulary. Post and preference writes reject
// anything outside this list.
var AllTags = []string{
	"Mathematics",
	"Physics",
	"Chemistry",
	"Biology",
	"Computer Science",
	"Engineering",
	"Medicine",
	"Psychology",
	"Economics",
	"Business",
	"Law",
	"Philosophy",
	"Literature",
	"History",
	"Art",
	"Music",
	"Education",
	"Environmental Science",
	"Political Science",
	"Sociology",
}

var tagSet = func() map[string]bool {
	m := make(map[string]bool, len(AllTags))
	for _, t := range AllTags {
		m[t] = true
	}
	return m
}()

// IsValidTag reports whether tag belongs to the controlled vocabulary.
func IsValidTag(tag string) bool {
	return tagSet[tag]
}

// ValidateTags returns the first tag not in the vocabulary, or ok.
func ValidateTags(tags []string) (string, bool) {
	for _, t := range tags {
		if !tagSet[t] {
			return t, false
		}
	}
	return "", true
}
