package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/lvillar/proposalpdf/schema"
	"github.com/lvillar/proposalpdf/store"
)

// processed cleans a submitted schema document with the definition of kind.
func (s *Server) processed(kind schema.Kind, raw map[string]any) (schema.Document, error) {
	def, err := s.schemas.SchemaFor(kind)
	if err != nil {
		return nil, err
	}
	return schema.Process(def, raw), nil
}

// ProposalInput is the body of proposal create and update requests.
type ProposalInput struct {
	Name         string         `json:"name" binding:"required"`
	ClientName   string         `json:"client_name"`
	ProjectName  string         `json:"project_name"`
	Status       string         `json:"status"`
	ProposalType string         `json:"proposal_type"`
	Currency     string         `json:"currency"`
	SchemaData   map[string]any `json:"schema_data"`
}

func (in ProposalInput) apply(s *Server, p *store.Proposal) error {
	p.Name = in.Name
	p.ClientName = in.ClientName
	p.ProjectName = in.ProjectName
	if in.Status != "" {
		p.Status = in.Status
	}
	if in.ProposalType != "" {
		p.ProposalType = in.ProposalType
	}
	if in.Currency != "" {
		p.Currency = in.Currency
	}
	if in.SchemaData != nil {
		data, err := s.processed(schema.KindProposal, in.SchemaData)
		if err != nil {
			return err
		}
		p.Data = data
	}
	return nil
}

func (s *Server) listProposals(c *gin.Context) {
	list, err := s.store.Proposals(c.Request.Context(), c.Query("status"))
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createProposal(c *gin.Context) {
	var in ProposalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &store.Proposal{}
	if in.SchemaData == nil {
		in.SchemaData = map[string]any{}
	}
	if err := in.apply(s, p); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := s.store.CreateProposal(c.Request.Context(), p); err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getProposal(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := s.store.ProposalWithItems(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Proposal not found.")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateProposal(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := s.store.Proposal(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Proposal not found.")
		return
	}
	var in ProposalInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := in.apply(s, p); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := s.store.UpdateProposal(c.Request.Context(), p); err != nil {
		s.fail(c, err, "Proposal not found.")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProposal(c *gin.Context) {
	s.byID(c, "Proposal not found.", func(id int64) error {
		return s.store.DeleteProposal(c.Request.Context(), id)
	})
}

func (s *Server) archiveProposal(c *gin.Context) {
	s.byID(c, "Proposal not found.", func(id int64) error {
		return s.store.ArchiveProposal(c.Request.Context(), id)
	})
}

func (s *Server) unarchiveProposal(c *gin.Context) {
	s.byID(c, "Proposal not found.", func(id int64) error {
		return s.store.UnarchiveProposal(c.Request.Context(), id)
	})
}

func (s *Server) cloneProposal(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := s.store.CloneProposal(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Proposal not found.")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// byID runs fn on the id path parameter and answers 204.
func (s *Server) byID(c *gin.Context, notFound string, fn func(int64) error) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := fn(id); err != nil {
		s.fail(c, err, notFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// ItemInput is the body of item create requests.
type ItemInput struct {
	ItemType    string  `json:"item_type"`
	ItemID      *int64  `json:"item_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
	SortOrder   int     `json:"sort_order"`
}

func (in ItemInput) toStore() store.ItemInput {
	return store.ItemInput{
		ItemType:    in.ItemType,
		ItemID:      in.ItemID,
		Name:        in.Name,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		TotalPrice:  in.TotalPrice,
		SortOrder:   in.SortOrder,
	}
}

func (s *Server) listItems(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if _, err := s.store.Proposal(c.Request.Context(), id); err != nil {
		s.fail(c, err, "Proposal not found.")
		return
	}
	items, err := s.store.ProposalItems(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) addItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	it, err := s.store.AddItem(c.Request.Context(), id, in.toStore())
	if err != nil {
		s.fail(c, err, "Proposal not found.")
		return
	}
	c.JSON(http.StatusCreated, it)
}

func (s *Server) replaceItems(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in []ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	inputs := make([]store.ItemInput, 0, len(in))
	for _, it := range in {
		inputs = append(inputs, it.toStore())
	}
	items, err := s.store.ReplaceItems(c.Request.Context(), id, inputs)
	if err != nil {
		s.fail(c, err, "Proposal not found.")
		return
	}
	c.JSON(http.StatusOK, items)
}

// ItemPatchInput is the body of item update requests. Absent fields are
// left unchanged.
type ItemPatchInput struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Quantity    *int     `json:"quantity"`
	UnitPrice   *float64 `json:"unit_price"`
	TotalPrice  *float64 `json:"total_price"`
	SortOrder   *int     `json:"sort_order"`
}

func (s *Server) updateItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in ItemPatchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	it, err := s.store.UpdateItem(c.Request.Context(), id, store.ItemPatch(in))
	if err != nil {
		s.fail(c, err, "Item not found.")
		return
	}
	c.JSON(http.StatusOK, it)
}

func (s *Server) deleteItem(c *gin.Context) {
	s.byID(c, "Item not found.", func(id int64) error {
		return s.store.DeleteItem(c.Request.Context(), id)
	})
}

type idsInput struct {
	IDs []int64 `json:"ids" binding:"required"`
}

func (s *Server) addPackages(c *gin.Context) {
	s.addCatalog(c, s.store.AddPackages)
}

func (s *Server) addExtras(c *gin.Context) {
	s.addCatalog(c, s.store.AddExtras)
}

func (s *Server) addCatalog(c *gin.Context, add func(ctx context.Context, proposalID int64, ids []int64) (int, error)) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in idsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	n, err := add(c.Request.Context(), id, in.IDs)
	if err != nil {
		s.fail(c, err, "Proposal not found.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": n})
}

// BrochureInput is the body of brochure create and update requests.
type BrochureInput struct {
	Title      string         `json:"title" binding:"required"`
	Status     string         `json:"status"`
	Category   string         `json:"category"`
	SchemaData map[string]any `json:"schema_data"`
}

func (in BrochureInput) apply(s *Server, b *store.Brochure) error {
	b.Title = in.Title
	b.Category = in.Category
	if in.Status != "" {
		b.Status = in.Status
	}
	if in.SchemaData != nil {
		data, err := s.processed(schema.KindBrochure, in.SchemaData)
		if err != nil {
			return err
		}
		b.Data = data
	}
	return nil
}

func (s *Server) listBrochures(c *gin.Context) {
	list, err := s.store.Brochures(c.Request.Context(), c.Query("status"))
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createBrochure(c *gin.Context) {
	var in BrochureInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b := &store.Brochure{}
	if err := in.apply(s, b); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := s.store.CreateBrochure(c.Request.Context(), b); err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (s *Server) getBrochure(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := s.store.Brochure(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Brochure not found.")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) updateBrochure(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	b, err := s.store.Brochure(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Brochure not found.")
		return
	}
	var in BrochureInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := in.apply(s, b); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := s.store.UpdateBrochure(c.Request.Context(), b); err != nil {
		s.fail(c, err, "Brochure not found.")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (s *Server) deleteBrochure(c *gin.Context) {
	s.byID(c, "Brochure not found.", func(id int64) error {
		return s.store.DeleteBrochure(c.Request.Context(), id)
	})
}

type brochureItemInput struct {
	PackageID int64           `json:"package_id" binding:"required"`
	Overrides json.RawMessage `json:"overrides"`
}

func (s *Server) setBrochureItems(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in []brochureItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items := make([]store.BrochureItem, 0, len(in))
	for _, it := range in {
		items = append(items, store.BrochureItem{PackageID: it.PackageID, Overrides: datatypes.JSON(it.Overrides)})
	}
	if err := s.store.SetBrochureItems(c.Request.Context(), id, items); err != nil {
		s.fail(c, err, "Brochure not found.")
		return
	}
	c.JSON(http.StatusOK, items)
}

// PackageInput is the body of package create and update requests.
type PackageInput struct {
	Name             string         `json:"name" binding:"required"`
	PackageType      string         `json:"package_type"`
	Status           string         `json:"status"`
	ShortDescription string         `json:"short_description"`
	BasePrice        float64        `json:"base_price"`
	SchemaData       map[string]any `json:"schema_data"`
}

func (in PackageInput) apply(s *Server, p *store.Package) error {
	p.Name = in.Name
	p.ShortDescription = in.ShortDescription
	p.BasePrice = in.BasePrice
	if in.PackageType != "" {
		p.PackageType = in.PackageType
	}
	if in.Status != "" {
		p.Status = in.Status
	}
	if in.SchemaData != nil {
		data, err := s.processed(schema.PackageKind(p.PackageType), in.SchemaData)
		if err != nil {
			return err
		}
		p.Data = data
	}
	return nil
}

func (s *Server) listPackages(c *gin.Context) {
	list, err := s.store.Packages(c.Request.Context(), c.Query("type"), c.Query("status"))
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createPackage(c *gin.Context) {
	var in PackageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p := &store.Package{}
	if err := in.apply(s, p); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := s.store.CreatePackage(c.Request.Context(), p); err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getPackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := s.store.Package(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Package not found.")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updatePackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := s.store.Package(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Package not found.")
		return
	}
	var in PackageInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := in.apply(s, p); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := s.store.UpdatePackage(c.Request.Context(), p); err != nil {
		s.fail(c, err, "Package not found.")
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deletePackage(c *gin.Context) {
	s.byID(c, "Package not found.", func(id int64) error {
		return s.store.DeletePackage(c.Request.Context(), id)
	})
}

func (s *Server) archivePackage(c *gin.Context) {
	s.byID(c, "Package not found.", func(id int64) error {
		return s.store.ArchivePackage(c.Request.Context(), id)
	})
}

func (s *Server) unarchivePackage(c *gin.Context) {
	s.byID(c, "Package not found.", func(id int64) error {
		return s.store.UnarchivePackage(c.Request.Context(), id)
	})
}

func (s *Server) clonePackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := s.store.ClonePackage(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Package not found.")
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ExtraInput is the body of extra create and update requests.
type ExtraInput struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	BasePrice   float64        `json:"base_price"`
	SchemaData  map[string]any `json:"schema_data"`
}

func (in ExtraInput) apply(s *Server, ex *store.Extra) error {
	ex.Name = in.Name
	ex.Description = in.Description
	ex.BasePrice = in.BasePrice
	if in.Status != "" {
		ex.Status = in.Status
	}
	if in.SchemaData != nil {
		data, err := s.processed(schema.KindExtra, in.SchemaData)
		if err != nil {
			return err
		}
		ex.Data = data
	}
	return nil
}

func (s *Server) listExtras(c *gin.Context) {
	list, err := s.store.Extras(c.Request.Context(), c.Query("status"))
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createExtra(c *gin.Context) {
	var in ExtraInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ex := &store.Extra{}
	if err := in.apply(s, ex); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := s.store.CreateExtra(c.Request.Context(), ex); err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, ex)
}

func (s *Server) getExtra(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ex, err := s.store.Extra(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Extra not found.")
		return
	}
	c.JSON(http.StatusOK, ex)
}

func (s *Server) updateExtra(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ex, err := s.store.Extra(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Extra not found.")
		return
	}
	var in ExtraInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := in.apply(s, ex); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := s.store.UpdateExtra(c.Request.Context(), ex); err != nil {
		s.fail(c, err, "Extra not found.")
		return
	}
	c.JSON(http.StatusOK, ex)
}

func (s *Server) deleteExtra(c *gin.Context) {
	s.byID(c, "Extra not found.", func(id int64) error {
		return s.store.DeleteExtra(c.Request.Context(), id)
	})
}

// SnippetInput is the body of snippet create and update requests.
type SnippetInput struct {
	Title      string         `json:"title" binding:"required"`
	Category   string         `json:"category"`
	Content    string         `json:"content"`
	SchemaData map[string]any `json:"schema_data"`
}

func (in SnippetInput) apply(s *Server, sn *store.Snippet) error {
	sn.Title = in.Title
	sn.Category = in.Category
	sn.Content = schema.SanitizeRichText(in.Content)
	if in.SchemaData != nil {
		data, err := s.processed(schema.KindSnippet, in.SchemaData)
		if err != nil {
			return err
		}
		sn.Data = data
	}
	return nil
}

func (s *Server) listSnippets(c *gin.Context) {
	list, err := s.store.Snippets(c.Request.Context(), c.Query("category"))
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createSnippet(c *gin.Context) {
	var in SnippetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sn := &store.Snippet{}
	if err := in.apply(s, sn); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := s.store.CreateSnippet(c.Request.Context(), sn); err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, sn)
}

func (s *Server) getSnippet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sn, err := s.store.Snippet(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Snippet not found.")
		return
	}
	c.JSON(http.StatusOK, sn)
}

func (s *Server) updateSnippet(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sn, err := s.store.Snippet(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Snippet not found.")
		return
	}
	var in SnippetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := in.apply(s, sn); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := s.store.UpdateSnippet(c.Request.Context(), sn); err != nil {
		s.fail(c, err, "Snippet not found.")
		return
	}
	c.JSON(http.StatusOK, sn)
}

func (s *Server) deleteSnippet(c *gin.Context) {
	s.byID(c, "Snippet not found.", func(id int64) error {
		return s.store.DeleteSnippet(c.Request.Context(), id)
	})
}

// AssetInput is the body of asset create and update requests.
type AssetInput struct {
	Name         string          `json:"name" binding:"required"`
	Slug         string          `json:"slug"`
	AssetType    string          `json:"asset_type"`
	AttachmentID *int64          `json:"attachment_id"`
	Content      string          `json:"content"`
	Metadata     json.RawMessage `json:"metadata"`
}

func (in AssetInput) apply(a *store.Asset) {
	a.Name = in.Name
	a.Slug = in.Slug
	a.AssetType = in.AssetType
	a.AttachmentID = in.AttachmentID
	a.Content = in.Content
	if len(in.Metadata) > 0 {
		a.MetadataJSON = datatypes.JSON(in.Metadata)
	}
}

// listAssets lists assets, or returns the one asset named by ?slug=.
func (s *Server) listAssets(c *gin.Context) {
	if slug := c.Query("slug"); slug != "" {
		a, err := s.store.AssetBySlug(c.Request.Context(), slug)
		if err != nil {
			s.fail(c, err, "Asset not found.")
			return
		}
		c.JSON(http.StatusOK, a)
		return
	}
	list, err := s.store.Assets(c.Request.Context(), c.Query("type"))
	if err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) createAsset(c *gin.Context) {
	var in AssetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a := &store.Asset{}
	in.apply(a)
	if err := s.store.CreateAsset(c.Request.Context(), a); err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) getAsset(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	a, err := s.store.Asset(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Asset not found.")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) updateAsset(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	a, err := s.store.Asset(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Asset not found.")
		return
	}
	var in AssetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in.apply(a)
	if a.Slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug is required"})
		return
	}
	if err := s.store.UpdateAsset(c.Request.Context(), a); err != nil {
		s.fail(c, err, "Asset not found.")
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) deleteAsset(c *gin.Context) {
	s.byID(c, "Asset not found.", func(id int64) error {
		return s.store.DeleteAsset(c.Request.Context(), id)
	})
}

// uploadAttachment stores a multipart "file" under the uploads root as
// <year>/<month>/<name> and records it.
func (s *Server) uploadAttachment(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	name := filepath.Base(fh.Filename)
	if name == "." || name == string(filepath.Separator) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
		return
	}
	now := time.Now()
	rel := filepath.Join(now.Format("2006"), now.Format("01"), fmt.Sprintf("%d-%s", now.UnixNano(), name))
	dst := filepath.Join(s.uploadsDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		s.fail(c, err, "")
		return
	}
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		s.fail(c, err, "")
		return
	}
	at := &store.Attachment{FilePath: filepath.ToSlash(rel), MimeType: fh.Header.Get("Content-Type")}
	if err := s.store.CreateAttachment(c.Request.Context(), at); err != nil {
		s.fail(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, at)
}

func (s *Server) listSchemas(c *gin.Context) {
	c.JSON(http.StatusOK, s.schemas.Kinds())
}

func (s *Server) getSchema(c *gin.Context) {
	def, err := s.schemas.SchemaFor(schema.Kind(c.Param("kind")))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Schema not found."})
		return
	}
	c.JSON(http.StatusOK, def)
}
