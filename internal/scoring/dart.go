package scoring

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/merev/ds-scoring-engine/internal/errors"
)

// Dart is a single dart as reported by an auto-scoring board.
type Dart struct {
	Score  int  `json:"score"`
	Double bool `json:"double,omitempty"`
}

// ParseDart reads board notation: "T20", "D16", "S5", "5", "25", "BULL",
// "DB", "SB" and "MISS".
func ParseDart(s string) (Dart, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case "":
		return Dart{}, apperrors.New(apperrors.CodeInvalidInputRange, "empty dart")
	case "MISS", "M", "0":
		return Dart{}, nil
	case "BULL", "DB", "D25":
		return Dart{Score: 50, Double: true}, nil
	case "SB", "25", "S25":
		return Dart{Score: 25}, nil
	}

	mult := 1
	switch v[0] {
	case 'S':
		v = v[1:]
	case 'D':
		mult = 2
		v = v[1:]
	case 'T':
		mult = 3
		v = v[1:]
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 20 {
		return Dart{}, apperrors.New(apperrors.CodeInvalidInputRange, fmt.Sprintf("unknown dart %q", s))
	}
	return Dart{Score: n * mult, Double: mult == 2}, nil
}

// Validate reports whether the dart is a score a single dart can make.
func (d Dart) Validate() error {
	ok := false
	switch {
	case d.Double:
		ok = d.Score == 50 || (d.Score >= 2 && d.Score <= 40 && d.Score%2 == 0)
	case d.Score >= 0 && d.Score <= 20, d.Score == 25, d.Score == 50:
		ok = true
	case d.Score > 20 && d.Score <= 60:
		ok = d.Score%3 == 0 || (d.Score <= 40 && d.Score%2 == 0)
	}
	if !ok {
		return apperrors.New(apperrors.CodeInvalidInputRange, fmt.Sprintf("dart score %d is not possible", d.Score))
	}
	return nil
}

func (d Dart) String() string {
	switch {
	case d.Score == 0:
		return "MISS"
	case d.Double && d.Score == 50:
		return "BULL"
	case d.Double:
		return "D" + strconv.Itoa(d.Score/2)
	}
	return strconv.Itoa(d.Score)
}
