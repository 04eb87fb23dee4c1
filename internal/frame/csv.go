package frame

import (
	"fmt"
	"os"
	"strings"
)

// All code writing tables to files is here.

const (
	Sep         = ','
	EOL         = '\n'
	FloatFormat = "%.6f"
	Header      = true
)

type Files struct {
	EOL         byte
	Sep         byte
	FloatFormat string
	Header      bool

	file     *os.File
	fileName string
}

func NewFiles() *Files {
	return &Files{
		EOL:         byte(EOL),
		Sep:         byte(Sep),
		FloatFormat: FloatFormat,
		Header:      Header,
	}
}

func (f *Files) Create(fileName string) error {
	var e error
	f.fileName = fileName
	f.file, e = os.Create(fileName)

	return e
}

func (f *Files) FileName() string {
	return f.fileName
}

func (f *Files) Close() error {
	if f.file == nil {
		return fmt.Errorf("no open files")
	}

	return f.file.Close()
}

// Save writes df to the open file, header row first.
func (f *Files) Save(df *DF) error {
	if f.file == nil {
		return fmt.Errorf("no open files")
	}

	if f.Header {
		hdr := strings.Join(df.ColumnNames(), string(rune(f.Sep))) + string(rune(f.EOL))
		if _, e := f.file.WriteString(hdr); e != nil {
			return e
		}
	}

	names := df.ColumnNames()
	for row := 0; row < df.RowCount(); row++ {
		var line []byte
		for ind, name := range names {
			c, _ := df.Column(name)

			var lx []byte
			switch c.VectorType() {
			case DTfloat:
				lx = []byte(fmt.Sprintf(f.FloatFormat, c.ElementFloat(row)))
			case DTint:
				lx = []byte(fmt.Sprintf("%d", c.ElementInt(row)))
			case DTstring:
				lx = []byte(c.ElementString(row))
			}

			line = append(line, lx...)
			if ind < len(names)-1 {
				line = append(line, f.Sep)
			}
		}

		line = append(line, f.EOL)
		if _, e := f.file.Write(line); e != nil {
			return e
		}
	}

	return nil
}
