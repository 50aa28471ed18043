package loader

import (
	"fmt"
	"strings"

	"github.com/mjb-oz/geoutils/pkg/types"
)

// Geometry types accepted by AddGeometryColumn.
var geometryTypes = map[string]bool{
	"POINT":              true,
	"LINESTRING":         true,
	"POLYGON":            true,
	"MULTIPOINT":         true,
	"MULTILINESTRING":    true,
	"MULTIPOLYGON":       true,
	"GEOMETRYCOLLECTION": true,
	"GEOMETRY":           true,
}

// geomInfo is the column-level type and dimension of a set of geometries.
type geomInfo struct {
	Type string
	Dims string
}

// parseWKTHeader reads the type token of a WKT string, e.g.
// "POINT Z (1 2 3)" gives POINT and XYZ.
func parseWKTHeader(wkt string) (geomInfo, error) {
	s := strings.ToUpper(strings.TrimSpace(wkt))
	if i := strings.Index(s, ";"); i >= 0 && strings.HasPrefix(s, "SRID=") {
		s = strings.TrimSpace(s[i+1:])
	}
	head := s
	if i := strings.IndexByte(s, '('); i >= 0 {
		head = s[:i]
	} else if !strings.HasSuffix(s, "EMPTY") {
		return geomInfo{}, fmt.Errorf("%w: %q", types.ErrInvalidGeometry, truncate(wkt))
	}
	head = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(head), "EMPTY"))

	fields := strings.Fields(head)
	if len(fields) == 0 || len(fields) > 2 {
		return geomInfo{}, fmt.Errorf("%w: %q", types.ErrInvalidGeometry, truncate(wkt))
	}
	name, mod := fields[0], ""
	if len(fields) == 2 {
		mod = fields[1]
	} else if !geometryTypes[name] {
		for _, suffix := range []string{"ZM", "Z", "M"} {
			if base := strings.TrimSuffix(name, suffix); base != name && geometryTypes[base] {
				name, mod = base, suffix
				break
			}
		}
	}
	if !geometryTypes[name] {
		return geomInfo{}, fmt.Errorf("%w: unknown type %q", types.ErrInvalidGeometry, name)
	}

	switch mod {
	case "":
		return geomInfo{Type: name, Dims: "XY"}, nil
	case "Z", "M", "ZM":
		return geomInfo{Type: name, Dims: "XY" + mod}, nil
	default:
		return geomInfo{}, fmt.Errorf("%w: unknown modifier %q", types.ErrInvalidGeometry, mod)
	}
}

// inspectGeometry derives the column type from all non-empty geometries.
// Mixed types give GEOMETRY; dimensions follow the first geometry.
func inspectGeometry(wkts []string) (geomInfo, error) {
	var info geomInfo
	found := false
	for i, w := range wkts {
		if strings.TrimSpace(w) == "" {
			continue
		}
		gi, err := parseWKTHeader(w)
		if err != nil {
			return geomInfo{}, fmt.Errorf("row %d: %w", i, err)
		}
		if !found {
			info, found = gi, true
			continue
		}
		if gi.Type != info.Type {
			info.Type = "GEOMETRY"
		}
	}
	if !found {
		return geomInfo{}, types.ErrNoGeometryValues
	}
	return info, nil
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
