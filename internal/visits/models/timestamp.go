package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Timestamp ditulis sebagai epoch milidetik, format yang dipakai data mediflow_*
// yang sudah ada. Saat membaca, string RFC3339 juga diterima.
type Timestamp struct {
	time.Time
}

// At memotong t ke milidetik agar nilai di memori sama dengan yang tersimpan.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t.Truncate(time.Millisecond)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, t.UnixMilli(), 10), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = Timestamp{}
		return nil
	case data[0] == '"':
		var parsed time.Time
		if err := json.Unmarshal(data, &parsed); err != nil {
			return err
		}
		*t = At(parsed)
		return nil
	}
	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("timestamp %s is neither epoch milliseconds nor RFC3339", data)
	}
	*t = Timestamp{Time: time.UnixMilli(int64(ms)).UTC()}
	return nil
}
