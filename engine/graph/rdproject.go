package graph

import (
	"context"
	"fmt"

	"github.com/greenpower/powergraph/engine/domain"
)

const (
	mergeRDProject = `MERGE (r:RDProject {project_id: $project_id})
		SET r.name = $name,
		    r.status = $status,
		    r.objective = $objective,
		    r.projected_savings = $projected_savings`

	linkTarget = `MATCH (r:RDProject {project_id: $project_id})
		MATCH (p:Product {product_id: $product_id})
		MERGE (r)-[:TARGETS_PRODUCT]->(p)`
)

func rdProjectStatements(p domain.RDProject) []statement {
	stmts := []statement{{mergeRDProject, map[string]any{
		"project_id":        p.ID,
		"name":              p.Name,
		"status":            p.Status,
		"objective":         p.Objective,
		"projected_savings": p.ProjectedSavings,
	}}}
	for _, id := range p.TargetProducts {
		stmts = append(stmts, statement{linkTarget, map[string]any{
			"project_id": p.ID,
			"product_id": id,
		}})
	}
	return stmts
}

// SaveRDProject upserts an RDProject and its TARGETS_PRODUCT edges.
func (w *Writer) SaveRDProject(ctx context.Context, p domain.RDProject) error {
	if err := w.record(ctx, rdProjectStatements(p)); err != nil {
		return fmt.Errorf("graph: save R&D project %s: %w", p.ID, err)
	}
	return nil
}
