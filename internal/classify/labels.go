/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package classify

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Unknown is the label returned for indices outside the table.
const Unknown = "unknown"

const labelDelimiter = ": "

// Labels is a read-only table of class names indexed by class index.
type Labels struct {
	entries []string
}

// NewLabels builds a table from entries as they are.
func NewLabels(entries []string) *Labels {
	return &Labels{entries: entries}
}

// LoadLabels reads a label file, one label per line.
func LoadLabels(filename string) (*Labels, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open labels")
	}
	defer f.Close()
	return ReadLabels(f)
}

// ReadLabels reads one label per line. Lines are trimmed; blank lines are
// kept so indices match line numbers.
func ReadLabels(r io.Reader) (*Labels, error) {
	labels := []string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read labels")
	}
	return &Labels{entries: labels}, nil
}

// Len returns the number of entries.
func (l *Labels) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Lookup returns the raw entry for class, or Unknown when class is out of range.
func (l *Labels) Lookup(class int) string {
	if class < 0 || class >= l.Len() {
		return Unknown
	}
	return l.entries[class]
}

// Name returns the display name for class.
func (l *Labels) Name(class int) string {
	return DisplayName(l.Lookup(class))
}

// DisplayName extracts the name from a "<id>: <name>" entry. Entries without
// the delimiter are returned unchanged.
func DisplayName(entry string) string {
	if _, name, ok := strings.Cut(entry, labelDelimiter); ok {
		return name
	}
	return entry
}
