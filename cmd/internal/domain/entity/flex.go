package entity

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FlexString accepts a JSON string, number or boolean and keeps its textual
// form. Seed files and clients send ramais both as "2020" and 2020.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err != nil {
		return err
	}
	if b {
		*f = "true"
	} else {
		*f = "false"
	}
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// StringList is a []string that tolerates numbers and nulls inside the JSON
// array. Nulls are dropped.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(StringList, 0, len(raw))
	for _, item := range raw {
		if bytes.Equal(bytes.TrimSpace(item), []byte("null")) {
			continue
		}
		var f FlexString
		if err := f.UnmarshalJSON(item); err != nil {
			return err
		}
		out = append(out, string(f))
	}
	*l = out
	return nil
}

// UnmarshalJSON lets a phone be written either as a bare string ("3333-0000")
// or as the full {numero, link, ramal_original} object.
func (t *Telefone) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' {
		var f FlexString
		if err := f.UnmarshalJSON(trimmed); err != nil {
			return err
		}
		*t = Telefone{Numero: strings.TrimSpace(string(f))}
		return nil
	}

	var aux struct {
		Numero        FlexString `json:"numero"`
		Link          FlexString `json:"link"`
		RamalOriginal FlexString `json:"ramal_original"`
	}
	if err := json.Unmarshal(trimmed, &aux); err != nil {
		return err
	}
	*t = Telefone{
		Numero:        string(aux.Numero),
		Link:          string(aux.Link),
		RamalOriginal: string(aux.RamalOriginal),
	}
	return nil
}
