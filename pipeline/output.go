/*
Copyright © 2024 the TwinMAP authors.
This file is part of TwinMAP.

TwinMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TwinMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TwinMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package pipeline

import (
	"bytes"
	"context"
	"path"
	"path/filepath"
	"slices"
	"time"

	"github.com/spatialmodel/twinmap/config"
	"github.com/spatialmodel/twinmap/derive"
	"github.com/spatialmodel/twinmap/export"
	"github.com/spatialmodel/twinmap/extremum"
	"github.com/spatialmodel/twinmap/render"
	"gocloud.dev/blob"
)

// Outcome describes the artifacts written for a request.
type Outcome struct {
	Operation string          `json:"operation"`
	Files     []string        `json:"files"`
	Summary   *export.Summary `json:"summary,omitempty"`

	// Scale is the deflection scale factor, zero if the mesh was not
	// deflected.
	Scale float64 `json:"scale,omitempty"`
}

// Export3D writes the projected, optionally deflected, result as a
// 3-D scene, and as a PNG image if the request names one.
func (p *Pipeline) Export3D(ctx context.Context, req *config.Request) (*Outcome, error) {
	return p.run(ctx, req, outScene)
}

// ExportJSON writes the JSON summary of the result, and the
// spreadsheet, PDF report and S-N curve plot if requested.
func (p *Pipeline) ExportJSON(ctx context.Context, req *config.Request) (*Outcome, error) {
	return p.run(ctx, req, outSummary)
}

// ExportField writes the derived result table as line-delimited JSON.
func (p *Pipeline) ExportField(ctx context.Context, req *config.Request) (*Outcome, error) {
	return p.run(ctx, req, outField)
}

// Run writes every artifact of the request.
func (p *Pipeline) Run(ctx context.Context, req *config.Request) (*Outcome, error) {
	return p.run(ctx, req, outField|outSummary|outScene)
}

type outputs int

const (
	outField outputs = 1 << iota
	outSummary
	outScene
)

func (p *Pipeline) run(ctx context.Context, req *config.Request, out outputs) (*Outcome, error) {
	if _, err := p.Validate(req); err != nil {
		return nil, err
	}
	format := req.Format()
	ext, err := render.Extension(format)
	if out&outScene != 0 && err != nil {
		return nil, stageErr(StageValidate, &config.ValidationError{
			Field: "output format", Value: format, Allowed: render.FormatNames(),
		})
	}

	j, err := p.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	detail := j.op.Column()
	o := &Outcome{Operation: detail}
	data, scene := export.NewSink(), export.NewSink()
	var images []export.Image

	if out&outScene != 0 {
		f, scale, err := p.deflect(ctx, j)
		if err != nil {
			return nil, stageErr(StageDeflect, err)
		}
		o.Scale = scale
		s := render.Scene{Field: f, ShowEdges: req.OutputFiles.File3D.ShowEdges}
		if err := render.Export(scene.Create(detail+"."+ext), format, s); err != nil {
			return nil, stageErr(StageExport, err)
		}
		if name := req.OutputFiles.File3D.Image; name != "" {
			b := scene.Create(name)
			if err := render.Image(b, f); err != nil {
				return nil, stageErr(StageExport, err)
			}
			images = append(images, export.Image{Title: detail, PNG: b.Bytes()})
		}
	}

	if out&outField != 0 {
		if err := export.WriteField(data.Create(req.FieldFile()), j.table); err != nil {
			return nil, stageErr(StageExport, err)
		}
	}

	if out&outSummary != 0 {
		res, err := extremum.Extrema(j.table)
		if err != nil {
			return nil, stageErr(StageExtrema, err)
		}
		o.Summary = export.NewSummary(detail, p.Config.Unit(j.op), j.namedSelection(), j.twin.Outputs(), res)
		if err := p.writeSummary(j, data, o.Summary, images); err != nil {
			return nil, stageErr(StageExport, err)
		}
	}

	files, err := p.commit(ctx, []group{
		{dir: req.OutputFiles.OutputDir, sink: data},
		{dir: req.SceneDir(), sink: scene},
	})
	if err != nil {
		return nil, stageErr(StageExport, err)
	}
	o.Files = files
	j.log.WithField("files", files).Info("request complete")
	return o, nil
}

// writeSummary stages the summary and the optional spreadsheet, S-N
// curve plot and report.
func (p *Pipeline) writeSummary(j *job, s *export.Sink, sum *export.Summary, images []export.Image) error {
	df := j.req.OutputFiles.DataFile
	if err := export.WriteSummary(s.Create(j.req.SummaryFile()), sum); err != nil {
		return err
	}
	detail := j.op.Column()
	if df.XLSX {
		if err := export.WriteXLSX(s.Create(detail+".xlsx"), j.table, sum); err != nil {
			return err
		}
	}
	if df.SNPlot != "" && j.curve != nil {
		b := s.Create(df.SNPlot)
		if err := j.curve.Plot(b, p.Config.Units[string(derive.Stress)]); err != nil {
			return err
		}
		images = append(images, export.Image{Title: "S-N curve", PNG: b.Bytes()})
	}
	if df.Report != "" {
		r := &export.Report{
			Operation: detail,
			Summary:   sum,
			Created:   time.Now(),
			Images:    images,
		}
		if err := export.WriteReport(s.Create(df.Report), r); err != nil {
			return err
		}
	}
	return nil
}

type group struct {
	dir  string
	sink *export.Sink
}

// commit writes every group, or, if any write fails, none of them.
func (p *Pipeline) commit(ctx context.Context, groups []group) ([]string, error) {
	var (
		buckets []*blob.Bucket
		done    []*export.Commit
		files   []string
	)
	defer func() {
		for _, b := range buckets {
			b.Close()
		}
	}()
	for _, g := range groups {
		if len(g.sink.Names()) == 0 {
			continue
		}
		b, prefix, err := p.openBucket(ctx, g.dir)
		if err != nil {
			p.rollback(ctx, done)
			return nil, err
		}
		buckets = append(buckets, b)
		c, err := g.sink.Commit(ctx, b, prefix)
		if err != nil {
			p.rollback(ctx, done)
			return nil, err
		}
		done = append(done, c)
		for _, k := range c.Keys() {
			if p.Config.OutputBucket != "" {
				files = append(files, k)
			} else {
				files = append(files, filepath.Join(g.dir, filepath.FromSlash(k)))
			}
		}
	}
	return slices.Clip(files), nil
}

// openBucket opens the bucket for output directory dir. With an output
// bucket configured, dir becomes a key prefix in it.
func (p *Pipeline) openBucket(ctx context.Context, dir string) (*blob.Bucket, string, error) {
	if url := p.Config.OutputBucket; url != "" {
		b, err := export.OpenBucket(ctx, url, "")
		prefix := path.Clean(filepath.ToSlash(dir))
		if prefix == "." || prefix == "/" {
			prefix = ""
		}
		return b, prefix, err
	}
	b, err := export.OpenBucket(ctx, "", dir)
	return b, "", err
}

// rollback undoes the commits in done, restoring any artifact they
// overwrote.
func (p *Pipeline) rollback(ctx context.Context, done []*export.Commit) {
	for i := len(done) - 1; i >= 0; i-- {
		if err := done[i].Undo(ctx); err != nil {
			p.Log.WithError(err).Warn("rolling back outputs")
		}
	}
}

// Preview renders the result of req as a PNG image without writing
// any artifact.
func (p *Pipeline) Preview(ctx context.Context, req *config.Request) ([]byte, error) {
	j, err := p.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	f, _, err := p.deflect(ctx, j)
	if err != nil {
		return nil, stageErr(StageDeflect, err)
	}
	var b bytes.Buffer
	if err := render.Image(&b, f); err != nil {
		return nil, stageErr(StageExport, err)
	}
	return b.Bytes(), nil
}
