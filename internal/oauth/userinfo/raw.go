package userinfo

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// str lee un campo escalar como string. Acepta números porque algunos
// providers (kakao) envían el id como número JSON.
func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// obj lee un sub-objeto; nil si falta o tiene otro tipo.
func obj(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	o, _ := m[key].(map[string]any)
	return o
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizePhone deja solo dígitos en formato nacional.
// "+82 10-1234-5678" => "01012345678"; "010-1234-5678" => "01012345678".
// El código de país se reemplaza por el prefijo troncal "0".
func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "+") {
		rest := s[1:]
		if i := strings.IndexAny(rest, " -"); i > 0 {
			rest = strings.TrimLeft(rest[i+1:], " -")
		} else if strings.HasPrefix(rest, "82") {
			rest = rest[2:]
		}
		if !strings.HasPrefix(rest, "0") {
			rest = "0" + rest
		}
		s = rest
	}
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// combineBirthDate arma la fecha solo si año y día-del-año (MMDD o MM-DD)
// están presentes y forman una fecha válida.
func combineBirthDate(year, monthDay string) *time.Time {
	year = strings.TrimSpace(year)
	monthDay = strings.ReplaceAll(strings.TrimSpace(monthDay), "-", "")
	if len(year) != 4 || len(monthDay) != 4 {
		return nil
	}
	d, err := time.Parse("20060102", year+monthDay)
	if err != nil {
		return nil
	}
	d = d.UTC()
	return &d
}

// parseGender mapea texto libre a la enumeración cerrada.
func parseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderUnspecified
	}
}
