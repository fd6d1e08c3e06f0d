package smw

import "encoding/json"

// DecodeBrowseBySubject decodes a raw action=browsebysubject response body
// into a Payload ready for Transform. A dataitem's "item" field may arrive
// as either a JSON string or a JSON number (SMW is inconsistent here for
// type 1 entries); both decode to the same string representation since
// Transform re-parses numeric items itself.
func DecodeBrowseBySubject(raw []byte) (Payload, error) {
	var resp struct {
		Query struct {
			Subject string `json:"subject"`
			Data    []struct {
				Property string `json:"property"`
				DataItem []struct {
					Type int             `json:"type"`
					Item json.RawMessage `json:"item"`
				} `json:"dataitem"`
			} `json:"data"`
		} `json:"query"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Payload{}, err
	}

	payload := Payload{
		Subject: resp.Query.Subject,
		Data:    make([]Property, 0, len(resp.Query.Data)),
	}
	for _, prop := range resp.Query.Data {
		items := make([]DataItem, 0, len(prop.DataItem))
		for _, di := range prop.DataItem {
			items = append(items, DataItem{Type: di.Type, Item: rawItemString(di.Item)})
		}
		payload.Data = append(payload.Data, Property{Property: prop.Property, DataItems: items})
	}
	return payload, nil
}

func rawItemString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return string(raw)
}
