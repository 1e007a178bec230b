package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	fieldID          = "id"
	fieldName        = "name"
	fieldDescription = "description"
	fieldEmail       = "email"
	fieldAccounts    = "accounts"
	fieldCreateTs    = "createTs"
	fieldUpdateTs    = "updateTs"
)

var reservedFields = map[string]struct{}{
	fieldID:          {},
	fieldName:        {},
	fieldDescription: {},
	fieldEmail:       {},
	fieldAccounts:    {},
	fieldCreateTs:    {},
	fieldUpdateTs:    {},
}

// IsReservedField reports whether key names a fixed field (case-insensitive).
func IsReservedField(key string) bool {
	for f := range reservedFields {
		if strings.EqualFold(f, strings.TrimSpace(key)) {
			return true
		}
	}
	return false
}

// MarshalJSON writes the fixed fields and flattens Details into the same object.
// Details entries that collide with a fixed field are dropped.
func (a Application) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Details)+len(reservedFields))
	for k, v := range a.Details {
		if IsReservedField(k) {
			continue
		}
		out[k] = v
	}
	out[fieldID] = a.ID()
	out[fieldName] = a.Name
	out[fieldDescription] = a.Description
	out[fieldEmail] = a.Email
	out[fieldAccounts] = a.Accounts
	out[fieldCreateTs] = nullIfEmpty(a.CreateTs)
	out[fieldUpdateTs] = nullIfEmpty(a.UpdateTs)
	return json.Marshal(out)
}

// UnmarshalJSON routes every key that is not a fixed field into Details.
func (a *Application) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Clear()
	for k, v := range raw {
		switch k {
		case fieldID:
			// derived from name
		case fieldName:
			s, err := decodeString(k, v)
			if err != nil {
				return err
			}
			if s != nil {
				a.Name = *s
			}
		case fieldDescription:
			s, err := decodeString(k, v)
			if err != nil {
				return err
			}
			a.Description = s
		case fieldEmail:
			s, err := decodeString(k, v)
			if err != nil {
				return err
			}
			a.Email = s
		case fieldAccounts:
			s, err := decodeString(k, v)
			if err != nil {
				return err
			}
			a.Accounts = s
		case fieldCreateTs:
			s, err := decodeTimestamp(k, v)
			if err != nil {
				return err
			}
			a.CreateTs = s
		case fieldUpdateTs:
			s, err := decodeTimestamp(k, v)
			if err != nil {
				return err
			}
			a.UpdateTs = s
		default:
			var val any
			if err := json.Unmarshal(v, &val); err != nil {
				return fmt.Errorf("decode detail %q: %w", k, err)
			}
			a.Details[k] = val
		}
	}
	return nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func decodeString(field string, raw json.RawMessage) (*string, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("field %q must be a string: %w", field, err)
	}
	return &s, nil
}

// Timestamps are epoch millis carried as strings; bare numbers are accepted too.
func decodeTimestamp(field string, raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", fmt.Errorf("field %q must be epoch millis: %w", field, err)
	}
	return n.String(), nil
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
