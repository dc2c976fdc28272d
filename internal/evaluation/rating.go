package evaluation

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ReadRating prompts for a 1..5 rating of the named persona's answer and
// keeps asking until it gets one. Running out of input is an error.
func ReadRating(w io.Writer, in *bufio.Reader, name string) (int, error) {
	for {
		fmt.Fprintf(w, "Please rate the %s agent's response (%d-%d): ", name, MinRating, MaxRating)
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return 0, fmt.Errorf("read rating for %s: %w", name, err)
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(line))
		switch {
		case convErr != nil:
			fmt.Fprintln(w, "Please enter a valid integer.")
		case n < MinRating || n > MaxRating:
			fmt.Fprintln(w, "Rating must be between 1 and 5.")
		default:
			return n, nil
		}
		if err != nil {
			// Last line of input was not a valid rating.
			return 0, fmt.Errorf("read rating for %s: %w", name, io.ErrUnexpectedEOF)
		}
	}
}
