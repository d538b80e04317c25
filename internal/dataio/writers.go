package dataio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/sankum/buffergas/internal/bingrid"
	"github.com/sankum/buffergas/internal/geometry"
	"github.com/sankum/buffergas/internal/trajectory"
)

// sigFigFormat renders x in the scientific format with 6 significant
// figures the per-particle row format calls for: one leading digit
// plus 5 decimal digits.
func sigFigFormat(x float64) string {
	return strconv.FormatFloat(x, 'e', 5, 64)
}

// WriteRows writes the per-particle output rows described in spec.md
// section 6: a header line followed by whitespace-separated
// "idx x y z xnext ynext znext vx vy vz collides time" rows. A row is
// emitted only when saveAll is set or the trajectory terminated by
// exit (collision code 2).
func WriteRows(path string, rows []trajectory.Row, saveAll bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	if _, err := fmt.Fprintln(w, "idx x y z xnext ynext znext vx vy vz collides time"); err != nil {
		return err
	}

	for _, row := range rows {
		if !saveAll && row.Code != geometry.Exit {
			continue
		}
		_, err := fmt.Fprintf(w, "%d %s %s %s %s %s %s %s %s %s %d %s\n",
			row.Idx,
			sigFigFormat(row.X0[0]), sigFigFormat(row.X0[1]), sigFigFormat(row.X0[2]),
			sigFigFormat(row.XNext[0]), sigFigFormat(row.XNext[1]), sigFigFormat(row.XNext[2]),
			sigFigFormat(row.V[0]), sigFigFormat(row.V[1]), sigFigFormat(row.V[2]),
			int(row.Code),
			sigFigFormat(row.Time),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteBinStats writes the CSV bin-statistics output described in
// spec.md section 6, one row per grid cell with cell centers per
// bingrid.Grid.CellCenter. A cell with zero observations writes empty
// strings for its mean/variance columns rather than 0, matching the
// "NaN means preserved as empty" edge case for an unvisited cell.
func WriteBinStats(path string, grid *bingrid.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	if _, err := fmt.Fprintln(w, "r,z,n,t,tvar,vr,vz,vrvar,vzvar,vrvzcov,ncolls,ncollsvar,lfree,lfreevar"); err != nil {
		return err
	}

	for ri := 0; ri < grid.RBins; ri++ {
		for zi := 0; zi < grid.ZBins; zi++ {
			cell := grid.Cell(ri, zi)
			r, z := grid.CellCenter(ri, zi)
			snap := cell.Snapshot()

			field := func(v float64) string {
				if snap.N == 0 {
					return ""
				}
				return strconv.FormatFloat(v, 'g', -1, 64)
			}

			_, err := fmt.Fprintf(w, "%s,%s,%d,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
				strconv.FormatFloat(r, 'g', -1, 64),
				strconv.FormatFloat(z, 'g', -1, 64),
				snap.N,
				field(snap.TMean), field(snap.TVar),
				field(snap.VTangentialMean), field(snap.VAxialMean),
				field(snap.VTangentialVar), field(snap.VAxialVar), field(snap.VTVAxCov),
				field(snap.CMean), field(snap.CVar),
				field(snap.LMean), field(snap.LVar),
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}
