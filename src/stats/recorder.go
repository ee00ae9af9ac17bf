//Package stats records per-generation population statistics
package stats

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"lifegrid/src/universe"
)

//Record is one row of the generation log
type Record struct {
	Generation int   `csv:"generation"`
	LiveCells  int   `csv:"live"`
	Born       int   `csv:"born"`
	Died       int   `csv:"died"`
	TickMicros int64 `csv:"tick_us"`
}

//NewRecord converts the universe status into the log row
func NewRecord(st universe.Status) Record {
	return Record{
		Generation: st.Generation,
		LiveCells:  st.LiveCells,
		Born:       st.Born,
		Died:       st.Died,
		TickMicros: st.IterationTime.Microseconds(),
	}
}

//Recorder writes the generation log as CSV
//a nil Recorder discards everything
type Recorder struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
}

//NewRecorder writes the log to w
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

//CreateRecorder creates the log file at path
//Returns nil if path is empty (recording disabled)
func CreateRecorder(path string) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating stats file: %w", err)
	}
	return &Recorder{w: f, closer: f}, nil
}

//Write appends the status to the log
func (r *Recorder) Write(st universe.Status) error {
	if r == nil {
		return nil
	}
	records := []Record{NewRecord(st)}
	if !r.headerWritten {
		//first write includes headers
		if err := gocsv.Marshal(records, r.w); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, r.w); err != nil {
		return fmt.Errorf("writing stats: %w", err)
	}
	return nil
}

//Close closes the underlying file
func (r *Recorder) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
