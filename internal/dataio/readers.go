// Package dataio implements the two external interfaces the core
// engine is handed pre-parsed data through: the whitespace-delimited
// geometry and flow input files, and the per-particle-row / bin-
// statistics output files. Grounded on internal/storage/store.go's
// CSV-writer-with-header idiom (package renamed and rewritten for the
// buffer-gas record shapes; see DESIGN.md for why internal/store, the
// teacher's duplicate export package, was dropped rather than also
// adapted).
package dataio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sankum/buffergas/internal/flowfield"
	"github.com/sankum/buffergas/internal/geometry"
	"github.com/sankum/buffergas/internal/kinetics"
)

const (
	geomHeaderLines = 5
	geomBoundsLine1 = geomHeaderLines + 1 // line 6
	geomBoundsLine2 = geomHeaderLines + 2 // line 7
	geomDataStart   = 10

	flowDataStart = 10
)

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

func fields(line string) []string {
	return strings.Fields(line)
}

func parseFloats(fs []string) ([]float64, error) {
	vals := make([]float64, len(fs))
	for i, s := range fs {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// ReadGeometry parses the geometry file format from spec.md section 6:
// a 5-line header, a 2-line bounding block (min, max for axial and
// radial) on lines 6-7, and a segment table (ID z1 rho1 z2 rho2)
// starting at line 10. The ID column is read but not used by any
// geometric test.
func ReadGeometry(path string) (segments []geometry.Segment, zMin, zMax, rhoMax float64, err error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, 0, 0, 0, err
	}
	if len(lines) < geomDataStart {
		return nil, 0, 0, 0, fmt.Errorf("%w: %s has %d lines, need at least %d", kinetics.ErrBadGeometryFile, path, len(lines), geomDataStart)
	}

	minVals, err := parseFloats(fields(lines[geomBoundsLine1-1]))
	if err != nil || len(minVals) < 2 {
		return nil, 0, 0, 0, fmt.Errorf("%w: malformed min bound on line %d", kinetics.ErrBadGeometryFile, geomBoundsLine1)
	}
	maxVals, err := parseFloats(fields(lines[geomBoundsLine2-1]))
	if err != nil || len(maxVals) < 2 {
		return nil, 0, 0, 0, fmt.Errorf("%w: malformed max bound on line %d", kinetics.ErrBadGeometryFile, geomBoundsLine2)
	}
	zMin, zMax = minVals[0], maxVals[0]
	rhoMax = maxVals[1]

	for i := geomDataStart - 1; i < len(lines); i++ {
		fs := fields(lines[i])
		if len(fs) == 0 {
			continue
		}
		if len(fs) < 5 {
			return nil, 0, 0, 0, fmt.Errorf("%w: line %d has %d fields, need 5", kinetics.ErrBadGeometryFile, i+1, len(fs))
		}
		id, err := strconv.Atoi(fs[0])
		if err != nil {
			return nil, 0, 0, 0, fmt.Errorf("%w: bad segment id on line %d: %v", kinetics.ErrBadGeometryFile, i+1, err)
		}
		vals, err := parseFloats(fs[1:5])
		if err != nil {
			return nil, 0, 0, 0, fmt.Errorf("%w: bad segment fields on line %d: %v", kinetics.ErrBadGeometryFile, i+1, err)
		}
		segments = append(segments, geometry.Segment{
			ID: id, Z1: vals[0], Rho1: vals[1], Z2: vals[2], Rho2: vals[3],
		})
	}

	return segments, zMin, zMax, rhoMax, nil
}

// ReadFlow parses the flow file format from spec.md section 6: columns
// x y T rho rho_m vx vy vz starting at line 10. x maps to z_sample, y
// to r_sample, vx to the axial bulk velocity, vy to the radial bulk
// velocity, and vz is parsed but not used by the axisymmetric model.
// Points with T <= 0 are retained here and dropped by flowfield.New,
// per the component's input contract.
func ReadFlow(path string) ([]flowfield.FlowPoint, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) < flowDataStart {
		return nil, fmt.Errorf("%w: %s has %d lines, need at least %d", kinetics.ErrBadFlowFile, path, len(lines), flowDataStart)
	}

	points := make([]flowfield.FlowPoint, 0, len(lines)-flowDataStart+1)
	for i := flowDataStart - 1; i < len(lines); i++ {
		fs := fields(lines[i])
		if len(fs) == 0 {
			continue
		}
		if len(fs) < 8 {
			return nil, fmt.Errorf("%w: line %d has %d fields, need 8", kinetics.ErrBadFlowFile, i+1, len(fs))
		}
		vals, err := parseFloats(fs[:8])
		if err != nil {
			return nil, fmt.Errorf("%w: bad flow fields on line %d: %v", kinetics.ErrBadFlowFile, i+1, err)
		}
		// columns: x y T rho rho_m vx vy vz
		points = append(points, flowfield.FlowPoint{
			Z: vals[0], R: vals[1],
			T: vals[2], Rho: vals[3],
			VBulkAxial:  vals[5],
			VBulkRadial: vals[6],
			// vals[7] (vz) and vals[4] (rho_m) are read but unused by
			// the present axisymmetric model.
		})
	}

	return points, nil
}
