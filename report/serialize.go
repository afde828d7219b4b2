package report

import "encoding/json"

// MarshalResult serialises an AuditResult to JSON.
func MarshalResult(r *AuditResult) ([]byte, error) {
	return json.Marshal(r)
}

// UnmarshalResult deserialises an AuditResult from JSON.
func UnmarshalResult(data []byte) (*AuditResult, error) {
	var r AuditResult
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
