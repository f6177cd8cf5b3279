package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/ai"
	"github.com/spigell/resume-matcher/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Extractor fills schemas with Gemini and falls back to another extractor for
// every field the model leaves out or when the call fails.
type Extractor struct {
	generator contentGenerator
	fallback  ai.StructuredExtractor
	logger    *zap.Logger
	maxLogLen int
}

func NewExtractor(generator contentGenerator, fallback ai.StructuredExtractor, log *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Extractor{
		generator: generator,
		fallback:  fallback,
		logger:    log,
		maxLogLen: maxLogLength,
	}
}

func (e *Extractor) Extract(ctx context.Context, text string, schema ai.Schema) ai.Record {
	fallback := ai.Record{}
	if e.fallback != nil {
		fallback = e.fallback.Extract(ctx, text, schema)
	}
	if strings.TrimSpace(text) == "" || e.generator == nil {
		return fallback
	}

	system := buildPrompt(schema)

	e.logger.Debug("gemini generate content request",
		zap.String("schema", schema.Name),
		zap.Int("message_length", utf8.RuneCountInString(text)),
		zap.String("message_preview", utils.TruncateForLog(text, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, system, text)
	if err != nil {
		e.logger.Warn("gemini extraction failed, using heuristic fields",
			zap.String("schema", schema.Name),
			zap.Error(err),
		)
		return fallback
	}

	e.logger.Debug("gemini generate content response",
		zap.String("schema", schema.Name),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	record, err := parseRecord(raw, schema)
	if err != nil {
		e.logger.Warn("gemini response is not usable, using heuristic fields",
			zap.String("schema", schema.Name),
			zap.Error(err),
		)
		return fallback
	}

	return record.Merge(fallback)
}

func buildPrompt(schema ai.Schema) string {
	var fields strings.Builder
	for _, f := range schema.Fields {
		fmt.Fprintf(&fields, "- %q (%s): %s\n", f.Name, kindText(f.Kind), f.Description)
	}

	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Extract these fields from the {{SCHEMA_NAME}} as a JSON object:\n{{FIELDS}}"
	}
	prompt := strings.ReplaceAll(template, "{{SCHEMA_NAME}}", schema.Name)
	prompt = strings.ReplaceAll(prompt, "{{FIELDS}}", strings.TrimRight(fields.String(), "\n"))
	return prompt
}

func kindText(k ai.Kind) string {
	switch k {
	case ai.KindNumber:
		return "number"
	case ai.KindStringList:
		return "list of strings"
	case ai.KindRoleList:
		return `list of objects {"title": string, "years": number}`
	default:
		return "string"
	}
}

// parseRecord keeps only schema fields whose values can be coerced to the field kind.
func parseRecord(raw string, schema ai.Schema) (ai.Record, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	record := ai.Record{}
	for _, f := range schema.Fields {
		v, ok := data[f.Name]
		if !ok || v == nil {
			continue
		}

		switch f.Kind {
		case ai.KindNumber:
			if n := coerceFloat(v); !math.IsNaN(n) && !math.IsInf(n, 0) && n >= 0 {
				record[f.Name] = n
			}
		case ai.KindStringList:
			if list := coerceStrings(v); len(list) > 0 {
				record[f.Name] = list
			}
		case ai.KindRoleList:
			if roles := coerceRoles(v); len(roles) > 0 {
				record[f.Name] = roles
			}
		default:
			if s := coerceString(v); s != "" {
				record[f.Name] = s
			}
		}
	}
	return record, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	if !strings.HasPrefix(raw, "{") {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start != -1 && end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func coerceStrings(v any) []string {
	var items []any
	switch val := v.(type) {
	case []any:
		items = val
	case string:
		for _, part := range strings.Split(val, ",") {
			items = append(items, part)
		}
	default:
		return nil
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		s := coerceString(item)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func coerceRoles(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		title := coerceString(obj["title"])
		if title == "" {
			continue
		}
		role := map[string]any{"title": title}
		if years := coerceFloat(obj["years"]); !math.IsNaN(years) && !math.IsInf(years, 0) && years >= 0 {
			role["years"] = years
		}
		out = append(out, role)
	}
	return out
}
