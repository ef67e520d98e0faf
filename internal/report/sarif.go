package report

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/systmms/enrev/internal/defect"
)

// Version is stamped at build time and embedded in SARIF tool metadata.
var Version = "dev"

var categoryDescriptions = map[defect.Category]string{
	defect.CategoryStructural: "The artifact cannot be parsed or is missing a required element.",
	defect.CategoryFormatting: "The artifact violates a formatting rule such as indentation or marker pairing.",
	defect.CategoryReference:  "A key or placeholder does not resolve against its counterpart artifact.",
}

func writeSARIF(w io.Writer, results []*defect.Result) error {
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("enrev", "https://github.com/systmms/enrev")
	run.Tool.Driver.Version = &Version

	addRules(run)
	for _, r := range results {
		addResultDefects(run, r)
	}

	report.AddRun(run)
	if err := report.Write(w); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}
	_, err := w.Write([]byte("\n"))
	return err
}

func addRules(run *sarif.Run) {
	for _, cat := range []defect.Category{
		defect.CategoryStructural,
		defect.CategoryFormatting,
		defect.CategoryReference,
	} {
		name := string(cat)
		desc := categoryDescriptions[cat]
		rule := sarif.NewReportingDescriptor().WithID(string(cat))
		rule.WithName(name)
		rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &name})
		rule.WithFullDescription(&sarif.MultiformatMessageString{Text: &desc})
		rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "error"})
		run.Tool.Driver.AddRule(rule)
	}
}

func addResultDefects(run *sarif.Run, r *defect.Result) {
	for _, d := range r.FileDefects {
		res := newDefectResult(d.Category, d.Description, r.Location, d.File, d.Line, d.Column)
		run.AddResult(res)
	}
	for _, d := range r.KeyDefects {
		res := newDefectResult(d.Category, d.Description, r.Location, d.File, d.Line, d.Column)
		props := sarif.NewPropertyBag()
		props.Add("group", d.Group)
		props.Add("key", d.Key)
		res.WithProperties(props)
		run.AddResult(res)
	}
}

func newDefectResult(cat defect.Category, message, location, file string, line, column int) *sarif.Result {
	res := sarif.NewRuleResult(string(cat))
	res.Level = "error"
	res.Kind = "fail"
	res.Message = sarif.NewTextMessage(message)

	uri := file
	if location != "" {
		uri = filepath.ToSlash(filepath.Join(location, file))
	}
	pLoc := sarif.NewPhysicalLocation().
		WithArtifactLocation(sarif.NewArtifactLocation().WithURI(uri))
	if line > 0 {
		region := sarif.NewRegion().WithStartLine(line)
		if column > 0 {
			region.WithStartColumn(column)
		}
		pLoc.WithRegion(region)
	}
	res.Locations = []*sarif.Location{sarif.NewLocation().WithPhysicalLocation(pLoc)}
	return res
}
