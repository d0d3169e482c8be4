package discovery

import (
	"fmt"

	"github.com/Ptrskay3/pysprint-cli/internal/config"
)

// ClassifiedSet holds the discovered files split by arm. Order inside each
// arm follows the discovery order.
type ClassifiedSet struct {
	Primary   []string // interferograms
	Secondary []string // sample arm
	Tertiary  []string // reference arm
}

// Len returns the number of primary files, the unit count of a per-file run.
func (s ClassifiedSet) Len() int { return len(s.Primary) }

// Classify partitions files according to mode. Non-fatal problems, such as a
// file count that is not a multiple of three, are returned as warnings.
func Classify(files []string, mode config.GroupingMode) (ClassifiedSet, []string) {
	switch mode {
	case config.AllAsPrimary:
		primary := make([]string, len(files))
		copy(primary, files)
		return ClassifiedSet{Primary: primary, Secondary: []string{}, Tertiary: []string{}}, nil
	case config.PrimaryOnly:
		set, warnings := triple(files)
		set.Secondary = []string{}
		set.Tertiary = []string{}
		return set, warnings
	default:
		return triple(files)
	}
}

func triple(files []string) (ClassifiedSet, []string) {
	var warnings []string
	n := len(files) - len(files)%3
	if n != len(files) {
		warnings = append(warnings, fmt.Sprintf(
			"the number of files (%d) is not divisible by 3, the last %d file(s) are ignored; maybe you forgot to exclude/include some?",
			len(files), len(files)-n))
	}

	set := ClassifiedSet{
		Primary:   make([]string, 0, n/3),
		Secondary: make([]string, 0, n/3),
		Tertiary:  make([]string, 0, n/3),
	}
	for i, f := range files[:n] {
		switch i % 3 {
		case 0:
			set.Primary = append(set.Primary, f)
		case 1:
			set.Secondary = append(set.Secondary, f)
		case 2:
			set.Tertiary = append(set.Tertiary, f)
		}
	}
	return set, warnings
}
