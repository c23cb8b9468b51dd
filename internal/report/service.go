package report

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"

	"github.com/okean-yachts/okean-cpq/internal/catalog/models"
	"github.com/okean-yachts/okean-cpq/internal/sales/atos"
	"github.com/okean-yachts/okean-cpq/internal/sales/contracts"
	"github.com/okean-yachts/okean-cpq/internal/sales/quotations"
)

// QuotationDocument is the data model behind the quotation PDF.
type QuotationDocument struct {
	Number             string
	ClientName         string
	ClientEmail        string
	IssuedAt           time.Time
	ValidUntil         *time.Time
	ModelName          string
	BasePrice          float64
	BaseDeliveryDays   int
	Options            []quotations.OptionSelection
	Upgrades           []quotations.UpgradeSelection
	Customizations     []contracts.CustomizationEntry
	BaseDiscountPct    float64
	OptionsDiscountPct float64
	FinalPrice         float64
	TotalDeliveryDays  int
	Notes              string
}

// ATODocumentItem is one line of the ATO PDF.
type ATODocumentItem struct {
	Name                 string
	ItemType             atos.ItemType
	OriginalPrice        float64
	DiscountPct          float64
	EffectivePrice       float64
	DeliveryImpactDays   int
	ReplacedUpgradeName  string
	ReplacedUpgradePrice float64
}

// ATODocument is the data model behind the ATO PDF.
type ATODocument struct {
	DisplayNumber      string
	Title              string
	ContractNumber     string
	ClientName         string
	IssuedAt           time.Time
	Items              []ATODocumentItem
	TotalPrice         float64
	DeliveryImpactDays int
	Notes              string
}

// Service renders commercial documents as PDFs.
type Service struct {
	renderer       *PDFRenderer
	quotations     quotations.Repository
	models         models.Repository
	customizations contracts.CustomizationSource
	atos           *atos.Service
	contracts      contracts.Repository

	quotationTpl *template.Template
	atoTpl       *template.Template
}

// NewService parses the report templates and wires the document sources.
func NewService(renderer *PDFRenderer, qrepo quotations.Repository, modelRepo models.Repository, custSrc contracts.CustomizationSource, atoSvc *atos.Service, contractRepo contracts.Repository) (*Service, error) {
	quotationTpl, err := parseReportTemplate("quotation_pdf.html")
	if err != nil {
		return nil, err
	}
	atoTpl, err := parseReportTemplate("ato_pdf.html")
	if err != nil {
		return nil, err
	}
	return &Service{
		renderer:       renderer,
		quotations:     qrepo,
		models:         modelRepo,
		customizations: custSrc,
		atos:           atoSvc,
		contracts:      contractRepo,
		quotationTpl:   quotationTpl,
		atoTpl:         atoTpl,
	}, nil
}

// QuotationPDF renders the quotation document. It returns the PDF bytes and
// a suggested filename.
func (s *Service) QuotationPDF(ctx context.Context, quotationID uuid.UUID) ([]byte, string, error) {
	doc, err := s.buildQuotationDocument(ctx, quotationID)
	if err != nil {
		return nil, "", err
	}
	html, err := executeTemplate(s.quotationTpl, "quotation_pdf.html", doc)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("orcamento-%s.pdf", doc.Number)
	pdf, err := s.renderer.Render(ctx, "quotation.html", html)
	if err != nil {
		return nil, "", err
	}
	return pdf, filename, nil
}

// ATOPDF renders the ATO document with its aggregated impact.
func (s *Service) ATOPDF(ctx context.Context, atoID uuid.UUID) ([]byte, string, error) {
	doc, err := s.buildATODocument(ctx, atoID)
	if err != nil {
		return nil, "", err
	}
	html, err := executeTemplate(s.atoTpl, "ato_pdf.html", doc)
	if err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("%s-%s.pdf", doc.ContractNumber, doc.DisplayNumber)
	pdf, err := s.renderer.Render(ctx, "ato.html", html)
	if err != nil {
		return nil, "", err
	}
	return pdf, filename, nil
}

func (s *Service) buildQuotationDocument(ctx context.Context, quotationID uuid.UUID) (*QuotationDocument, error) {
	q, err := s.quotations.Get(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	model, err := s.models.Get(ctx, q.ModelID)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	doc := &QuotationDocument{
		Number:             q.Number,
		ClientName:         q.ClientName,
		ClientEmail:        q.ClientEmail,
		IssuedAt:           q.CreatedAt,
		ValidUntil:         q.ValidUntil,
		ModelName:          model.Name,
		BasePrice:          q.BasePrice,
		BaseDeliveryDays:   q.BaseDeliveryDays,
		Options:            q.SelectedOptions,
		Upgrades:           q.SelectedUpgrades,
		BaseDiscountPct:    q.BaseDiscountPct,
		OptionsDiscountPct: q.OptionsDiscountPct,
		FinalPrice:         q.FinalPrice,
		TotalDeliveryDays:  q.TotalDeliveryDays,
	}
	if q.Notes != nil {
		doc.Notes = *q.Notes
	}
	if s.customizations != nil {
		entries, err := s.customizations.ApprovedEntries(ctx, q.ID)
		if err != nil {
			return nil, fmt.Errorf("load customizations: %w", err)
		}
		doc.Customizations = entries
	}
	return doc, nil
}

func (s *Service) buildATODocument(ctx context.Context, atoID uuid.UUID) (*ATODocument, error) {
	ato, err := s.atos.Get(ctx, atoID)
	if err != nil {
		return nil, err
	}
	contract, err := s.contracts.Get(ctx, ato.ContractID)
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}
	impact, err := s.atos.AggregatedImpact(ctx, atoID)
	if err != nil {
		return nil, err
	}
	configs, err := s.atos.Configurations(ctx, atoID)
	if err != nil {
		return nil, err
	}
	configByID := make(map[uuid.UUID]atos.Configuration, len(configs))
	for _, cfg := range configs {
		configByID[cfg.ID] = cfg
	}

	doc := &ATODocument{
		DisplayNumber:      ato.DisplayNumber(),
		Title:              ato.Title,
		ContractNumber:     contract.Number,
		ClientName:         contract.ClientName,
		IssuedAt:           ato.CreatedAt,
		TotalPrice:         impact.TotalPrice,
		DeliveryImpactDays: impact.DeliveryImpactDays,
	}
	if ato.Notes != nil {
		doc.Notes = *ato.Notes
	}
	for _, entry := range impact.Breakdown {
		item := ATODocumentItem{
			Name:                 entry.Name,
			ItemType:             entry.ItemType,
			EffectivePrice:       entry.EffectivePrice,
			DeliveryImpactDays:   entry.DeliveryImpactDays,
			ReplacedUpgradeName:  entry.ReplacedName,
			ReplacedUpgradePrice: entry.ReplacedPrice,
		}
		if cfg, ok := configByID[entry.ConfigurationID]; ok {
			item.OriginalPrice = cfg.OriginalPrice
			item.DiscountPct = cfg.DiscountPct
		}
		doc.Items = append(doc.Items, item)
	}
	return doc, nil
}
