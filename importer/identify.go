package importer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rosskouk/kinesiscount"
)

// DefaultStatementPattern matches the file name of a statement as downloaded.
const DefaultStatementPattern = `^Account balance_Statement_KM13451730_.*\.csv`

// ErrNotClaimed is returned when a file is not a Kinesis statement.
var ErrNotClaimed = errors.New("not a Kinesis statement")

// Identify reports whether the file at path, whose content starts with head,
// is a statement: its base name matches the statement pattern and its first
// line is exactly Header.
func (im *Importer) Identify(path string, head []byte) bool {
	if !im.pattern.MatchString(filepath.Base(path)) {
		return false
	}
	first, _, _ := strings.Cut(string(head), "\n")
	first = strings.TrimSuffix(strings.TrimPrefix(first, bom), "\r")
	return first == Header
}

// IdentifyFile reads the first line of path and calls Identify.
func (im *Importer) IdentifyFile(path string) (bool, error) {
	if !im.pattern.MatchString(filepath.Base(path)) {
		return false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("cannot read %q: %w", path, err)
	}
	return im.Identify(path, []byte(line)), nil
}

// FileName is the name to archive a statement under.
func (im *Importer) FileName(path string) string {
	return "kinesis." + filepath.Base(path)
}

// FileAccount is the account statements are archived under.
func (im *Importer) FileAccount() kinesiscount.Account { return im.cfg.AssetRoot }
