package query

import (
	"sort"

	"github.com/psychonautwiki/bifrost/internal/model"
)

// AskResultEntry is one entry in an ask response's query.results object.
type AskResultEntry struct {
	FullText  string         `json:"fulltext"`
	FullURL   string         `json:"fullurl"`
	Printouts map[string]any `json:"printouts"`
}

// AskResponse is the decoded shape of an action=ask response.
type AskResponse struct {
	Query struct {
		Results map[string]AskResultEntry `json:"results"`
	} `json:"query"`
}

// ProjectNamedRefs emits {name,url} for every value in query.results,
// sorted by name for deterministic output (the upstream object's key
// order is not meaningful and Go map iteration does not preserve it).
func ProjectNamedRefs(resp AskResponse) []model.NamedRef {
	out := make([]model.NamedRef, 0, len(resp.Query.Results))
	for _, r := range resp.Query.Results {
		out = append(out, model.NamedRef{Name: r.FullText, URL: r.FullURL})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ProjectEffectsOfSubstance reads query.results.{substance}.printouts.Effect
// and emits it as a list of {name,url}.
func ProjectEffectsOfSubstance(resp AskResponse, substance string) []model.NamedRef {
	entry, ok := resp.Query.Results[substance]
	if !ok {
		return nil
	}

	raw, ok := entry.Printouts["Effect"]
	if !ok {
		return nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil
	}

	out := make([]model.NamedRef, 0, len(arr))
	for _, e := range arr {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		name, _ := m["fulltext"].(string)
		url, _ := m["fullurl"].(string)
		out = append(out, model.NamedRef{Name: name, URL: url})
	}
	return out
}
