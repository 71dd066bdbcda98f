package presales

import (
	"regexp"
	"strings"
)

// Aliases the model commonly uses for response and remark columns.
var columnAliases = map[string]string{
	"RESPONSE":            "TENDERER'S RESPONSE",
	"REMARK":              "TENDERER'S REMARK",
	"COMPLIANCE":          "TENDERER'S RESPONSE",
	"COMMENT":             "TENDERER'S REMARK",
	"VENDOR RESPONSE":     "VENDOR RESPONSE",
	"VENDOR REMARKS":      "VENDOR REMARKS",
	"VENDOR COMMENTS":     "VENDOR REMARKS",
	"ANSWER":              "ANSWER",
	"NOTES":               "NOTES",
	"TENDERER'S RESPONSE": "TENDERER'S RESPONSE",
	"TENDERER'S REMARK":   "TENDERER'S REMARK",
}

var responseKeys = []string{"RESPONSE", "ANSWER", "COMPLIANCE"}
var remarkKeys = []string{"REMARK", "COMMENT", "NOTES"}

var columnLine = regexp.MustCompile(`^([A-Za-z_'\s]+)\s*:\s*(.*)`)

// extractColumnValues parses the model's "COLUMN: value" reply into the
// requested output columns. An EXPLANATION section, when present, becomes
// the remark for decisive responses.
func extractColumnValues(text string, outputCols []string) map[string]string {
	results := make(map[string]string, len(outputCols))
	for _, col := range outputCols {
		results[col] = ""
	}

	var currentCol string
	var buffer []string
	var explanation string

	flush := func() {
		if currentCol == "" {
			return
		}
		if _, ok := results[currentCol]; ok {
			results[currentCol] = strings.TrimSpace(strings.Join(buffer, "\n"))
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(strings.ToUpper(line), "EXPLANATION:") {
			if _, after, found := strings.Cut(line, ":"); found {
				explanation = strings.TrimSpace(after)
			}
			continue
		}

		m := columnLine.FindStringSubmatch(line)
		if m == nil {
			if currentCol != "" {
				buffer = append(buffer, line)
			}
			continue
		}

		flush()

		rawCol := strings.ToUpper(strings.TrimSpace(m[1]))
		col, ok := columnAliases[rawCol]
		if !ok {
			col = rawCol
		}

		if _, known := results[col]; !known {
			col = matchOutputColumn(rawCol, outputCols)
		}
		currentCol = col
		if currentCol == "" {
			buffer = nil
			continue
		}
		buffer = []string{strings.TrimSpace(m[2])}
	}
	flush()

	fillDefaults(results, outputCols)
	applyExplanation(results, outputCols, explanation)
	return results
}

// matchOutputColumn maps an unknown model column onto an output column of
// the same kind (response-like or remark-like).
func matchOutputColumn(rawCol string, outputCols []string) string {
	for _, out := range outputCols {
		if containsAny(rawCol, responseKeys) && containsAny(out, responseKeys) {
			return out
		}
		if containsAny(rawCol, remarkKeys) && containsAny(out, remarkKeys) {
			return out
		}
	}
	return ""
}

func fillDefaults(results map[string]string, outputCols []string) {
	for _, col := range outputCols {
		if strings.TrimSpace(results[col]) != "" {
			continue
		}
		switch {
		case containsAny(col, responseKeys):
			results[col] = "Not found"
		case containsAny(col, remarkKeys):
			results[col] = "Based on comprehensive analysis of available documentation and industry resources, " +
				"specific information regarding this requirement could not be definitively established."
		}
	}
}

// applyExplanation overwrites the remark column with the explanation (or
// a canned summary) when the response is a decisive value.
func applyExplanation(results map[string]string, outputCols []string, explanation string) {
	var responseCol, remarkCol string
	for _, col := range outputCols {
		switch {
		case containsAny(col, responseKeys):
			responseCol = col
		case containsAny(col, remarkKeys):
			remarkCol = col
		}
	}

	if responseCol == "" || remarkCol == "" || results[responseCol] == "" {
		if remarkCol != "" && explanation != "" {
			results[remarkCol] = explanation
		}
		return
	}

	if explanation != "" {
		switch strings.ToLower(strings.TrimSpace(results[responseCol])) {
		case "yes", "partially", "no", "not found":
			results[remarkCol] = explanation
		}
		return
	}

	switch strings.ToLower(strings.TrimSpace(results[responseCol])) {
	case "yes":
		results[remarkCol] = "The platform provides the required functionality as part of its core capabilities."
	case "partially":
		results[remarkCol] = "The platform provides partial support for this requirement with some limitations or additional configuration needed."
	case "no":
		results[remarkCol] = "Based on available documentation and capabilities analysis, this specific requirement is not supported by the current platform architecture."
	case "not found":
		results[remarkCol] = "Comprehensive analysis of available documentation and industry resources could not identify specific information regarding this requirement. Further clarification may be required."
	}
}

func containsAny(s string, keys []string) bool {
	upper := strings.ToUpper(s)
	for _, key := range keys {
		if strings.Contains(upper, key) {
			return true
		}
	}
	return false
}
