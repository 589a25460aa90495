package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `burnup ingests ERANOS burnup reports and derives proliferation-resistance metrics.

Core concepts:
- Run: one ingested report, stored with an ID. Ingestion is all or nothing.
- Cycle: an operating interval with evenly spaced time nodes plus an optional cooling node.
- Region: a fuel region (FUEL1, FUEL2, ...) or the radial blanket (BLANK).
- Material: the nuclide composition of one region at one time node, in kg.
- Charge/discharge: what enters and leaves the core in a cycle, addressed as region "charge" or "discharge".

Workflow:
1) ingest_report(path) or list_runs to pick a run.
2) list_cycles(run_id) for cycle indices, node times and feed regimes.
3) get_material / material_metrics(run_id, cycle, node, region) for compositions and metrics.
4) get_balance(run_id, cycle) for the charge/discharge accounting.

Metrics that are undefined for a material (critical mass of a subcritical medium,
per-kg values of an empty material) are returned as null.

Docs:
- burnup://docs/concepts
- burnup://docs/metrics
- burnup://docs/report-format
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "burnup://docs/concepts",
		Name:        "docs_concepts",
		Title:       "burnup concepts",
		Description: "Runs, cycles, regions, nuclides and lumped fission products.",
		Content: `# Concepts

## Cycle timeline
A cycle declares a timestep and an iteration count. Its node times are
0, dt, 2dt, ... n*dt, followed by one cooling node when the report declares
cooling. Node 0 is the start of the cycle.

## Nuclides
Nuclides are keyed case-insensitively (PU239 and Pu239 are the same entry).
A trailing m marks a metastable state (Am242m). Actinides have Z >= 90; minor
actinides are actinides other than U and Pu with A >= 232.

## Lumped fission products
ERANOS reports fission products lumped per fissioning parent (sfpU235,
sfpPu239, ...). Ingestion replaces every lump with individual products using
the configured yield table. A lump whose parent has no yield-table column
fails the ingestion.

## Feed regimes
The material balance block of a cycle reports, per fuel region, either a
required feed (the region lacked fissile material) or an additional feed
(the region produced excess actinides). The regime is tracked per region;
list_cycles reports whether the regions agree.

## Charge and discharge
Charge holds the uranium makeup, the blanket migrated into the core and the
required feed vector. Discharge holds the blanket migrated out, the fission
products created by the makeup and the excess actinides.
`,
	},
	{
		URI:         "burnup://docs/metrics",
		Name:        "docs_metrics",
		Title:       "burnup metrics",
		Description: "Definitions of the derived metrics returned by material_metrics.",
		Content: `# Metrics

- heat, gamma_heat (W), neutron (n/s), dose (rem/h at 1 m): weighted sums of
  per-nuclide coefficients over non-placeholder nuclides; the _ma variants
  count minor actinides only, the _per_kg variants divide by total mass.
- significant_quantities: Pu/8 + Np237/25 + U/75 (kg).
- critical_mass: one-group bare sphere, R = pi*sqrt(D/(nuSigmaF - SigmaA)).
  Null unless nuSigmaF > SigmaA and D > 0 (rates are known at node 0).
- u1..u5: attractiveness utilities (material type, heat, fissile fraction,
  significant quantities, dose).
- fom1, fom2: Bathke figures of merit; fom2 adds the spontaneous-neutron term.
  Null when the critical mass is undefined or the material is empty.
`,
	},
	{
		URI:         "burnup://docs/report-format",
		Name:        "docs_report_format",
		Title:       "ERANOS report anchors",
		Description: "Which report lines ingestion depends on, and which are optional.",
		Content: `# Report anchors

Required: ->LISTE_MILIEUX (fuel regions), ->CYCLE/->PASSE/->ITER per cycle,
the one-group cross sections of every region, 'MASS BALANCE OF CYCLE n',
one MATERIAL block per region and node, and the material balance block.

Optional: ->BLANKET (adds region BLANK), ->COOLING (none, a duration, or AUTO
with an optional fraction of irradiation time) and the end-of-run cross
sections. Missing optional anchors produce warnings on the run.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
