package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Specification is a top-level project requirements document owning a
// tree of features.
type Specification struct {
	ID          uuid.UUID
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Feature is a single requirement node, up to three levels deep. A nil
// ParentID marks a root entry.
type Feature struct {
	ID              uuid.UUID
	SpecificationID uuid.UUID
	Title           string
	Description     string
	OrderIndex      int
	Level           int
	ParentID        *uuid.UUID
	IsCompleted     bool
	CreatedAt       time.Time
}

const maxFeatureLevel = 3

// ValidateNewFeature checks the invariants enforced on creation: a
// non-blank title and a level within 1..3. Parent/level adjacency is
// deliberately not enforced; BuildTree degrades gracefully instead.
func ValidateNewFeature(title string, level int) error {
	if strings.TrimSpace(title) == "" {
		return validationError("feature title is required")
	}
	if level < 1 || level > maxFeatureLevel {
		return validationError("feature level must be between 1 and %d", maxFeatureLevel)
	}
	return nil
}

// NextOrderIndex assigns the order index for a new feature among its
// siblings: max existing + 1, or 0 for the first sibling. Ties in the
// existing data are tolerated.
func NextOrderIndex(siblings []Feature) int {
	next := -1
	for _, f := range siblings {
		if f.OrderIndex > next {
			next = f.OrderIndex
		}
	}
	return next + 1
}

// FeaturePatch is an explicit optional-field update. A nil member means
// "leave unchanged"; ParentID uses NullUUID so the parent can be set,
// cleared, or left alone. OrderIndex is not editable through patches.
type FeaturePatch struct {
	Title       *string
	Description *string
	Level       *int
	ParentID    *uuid.NullUUID
	IsCompleted *bool
}

// Apply merges the patch into a copy of f, validating mutated fields.
func (p FeaturePatch) Apply(f Feature) (Feature, error) {
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			return f, validationError("feature title is required")
		}
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Level != nil {
		if *p.Level < 1 || *p.Level > maxFeatureLevel {
			return f, validationError("feature level must be between 1 and %d", maxFeatureLevel)
		}
		f.Level = *p.Level
	}
	if p.ParentID != nil {
		if p.ParentID.Valid {
			id := p.ParentID.UUID
			f.ParentID = &id
		} else {
			f.ParentID = nil
		}
	}
	if p.IsCompleted != nil {
		f.IsCompleted = *p.IsCompleted
	}
	return f, nil
}

// ToggleCompletion flips the completion flag. Pure negation: completing
// a parent does not touch its children and vice versa.
func ToggleCompletion(f Feature) Feature {
	f.IsCompleted = !f.IsCompleted
	return f
}

// Progress is the derived completion aggregate over a feature set.
type Progress struct {
	Completed  int
	Total      int
	Percentage int
}

// ComputeProgress counts completed features over the whole set,
// regardless of level.
func ComputeProgress(features []Feature) Progress {
	p := Progress{Total: len(features)}
	for _, f := range features {
		if f.IsCompleted {
			p.Completed++
		}
	}
	p.Percentage = RoundPercent(p.Completed, p.Total)
	return p
}

// FeatureNode is a feature with its resolved children, for display and
// document generation.
type FeatureNode struct {
	Feature  Feature
	Children []*FeatureNode
}

// BuildTree nests features under their parents. A feature whose parent
// does not resolve to an existing feature at a shallower level is
// treated as a root, so orphaned children (deleted parent) and
// inconsistent level/parent pairs still display.
func BuildTree(features []Feature) []*FeatureNode {
	nodes := make(map[uuid.UUID]*FeatureNode, len(features))
	order := make([]*FeatureNode, 0, len(features))
	for _, f := range features {
		n := &FeatureNode{Feature: f}
		nodes[f.ID] = n
		order = append(order, n)
	}

	var roots []*FeatureNode
	for _, n := range order {
		parent := resolveParent(nodes, n.Feature)
		if parent == nil {
			roots = append(roots, n)
			continue
		}
		parent.Children = append(parent.Children, n)
	}

	sortSiblings(roots)
	for _, n := range order {
		sortSiblings(n.Children)
	}
	return roots
}

func resolveParent(nodes map[uuid.UUID]*FeatureNode, f Feature) *FeatureNode {
	if f.ParentID == nil {
		return nil
	}
	parent, ok := nodes[*f.ParentID]
	if !ok {
		return nil
	}
	// A parent at the same or deeper level would cycle the traversal;
	// fall back to root.
	if parent.Feature.Level >= f.Level {
		return nil
	}
	return parent
}

// Siblings order by orderIndex ascending; ties keep insertion order.
func sortSiblings(nodes []*FeatureNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Feature.OrderIndex < nodes[j].Feature.OrderIndex
	})
}
