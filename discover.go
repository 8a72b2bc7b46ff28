package rgrreport

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultEnrollmentPattern matches the enrollment export file names.
const DefaultEnrollmentPattern = "RGR*.xlsx"

// FindEnrollment returns the enrollment export in dir matching pattern.
// When several files match, the first in lexical order wins and a warning
// issue names the others.
func FindEnrollment(dir, pattern string) (string, Issues, error) {
	if pattern == "" {
		pattern = DefaultEnrollmentPattern
	}
	searchPattern := filepath.Join(dir, pattern)
	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return "", nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		// Excel lock file
		if strings.HasPrefix(filepath.Base(match), "~$") {
			continue
		}
		files = append(files, match)
	}
	if len(files) == 0 {
		return "", nil, &InputNotFoundError{Path: searchPattern}
	}
	sort.Strings(files)

	var issues Issues
	if len(files) > 1 {
		others := make([]string, 0, len(files)-1)
		for _, f := range files[1:] {
			others = append(others, filepath.Base(f))
		}
		issues.warn(filepath.Base(files[0]), 0, "multiple files match %s, using this one and ignoring %s",
			pattern, strings.Join(others, ", "))
	}
	return files[0], issues, nil
}
