package dataset

import "fmt"

// DataLoadError reports a source that could not be read or whose content
// does not form a usable order table. Row is 1-based over data rows and is
// zero when the failure is not tied to a row.
type DataLoadError struct {
	Source string
	Row    int
	Column string
	Err    error
}

func (e *DataLoadError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("load %s: row %d, column %q: %v", e.Source, e.Row, e.Column, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("load %s: row %d: %v", e.Source, e.Row, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Source, e.Err)
	}
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}
