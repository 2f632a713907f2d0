package domain

// Procurement records are owned by the backend REST API. The client only
// reads and renders them, so fields mirror the wire format.

type RFPItem struct {
	Name           string         `json:"name"`
	Quantity       int            `json:"quantity"`
	Specifications map[string]any `json:"specifications,omitempty"`
}

// StructuredRFP is the AI-extracted form of a free-text request.
type StructuredRFP struct {
	Title                  string    `json:"title"`
	Description            string    `json:"description"`
	Items                  []RFPItem `json:"items"`
	Budget                 *float64  `json:"budget,omitempty"`
	DeliveryDays           *int      `json:"deliveryDays,omitempty"`
	PaymentTerms           string    `json:"paymentTerms,omitempty"`
	WarrantyYears          *int      `json:"warrantyYears,omitempty"`
	AdditionalRequirements []string  `json:"additionalRequirements,omitempty"`
}

type RFP struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	RawPrompt      string        `json:"rawPrompt"`
	StructuredData StructuredRFP `json:"structuredData"`
	Budget         *float64      `json:"budget,omitempty"`
	DeliveryDays   *int          `json:"deliveryDays,omitempty"`
	PaymentTerms   string        `json:"paymentTerms,omitempty"`
	WarrantyYears  *int          `json:"warrantyYears,omitempty"`
	CreatedAt      string        `json:"createdAt"`
}

const (
	RFPVendorSent      = "SENT"
	RFPVendorResponded = "RESPONDED"
	RFPVendorDraft     = "DRAFT"
)

type RFPVendor struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
	SentAt string `json:"sentAt,omitempty"`
}

type RFPWithVendors struct {
	RFP
	Vendors []RFPVendor `json:"vendors"`
}

type SendRFPResult struct {
	Success       bool     `json:"success"`
	SentCount     int      `json:"sentCount"`
	FailedVendors []string `json:"failedVendors"`
}

type CheckProposalsResult struct {
	ProcessedCount int `json:"processedCount"`
}

type Vendor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type CreateVendorRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Notes string `json:"notes,omitempty"`
}

// UpdateVendorRequest leaves nil fields unchanged.
type UpdateVendorRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

type ProposalItem struct {
	Name           string         `json:"name"`
	Quantity       int            `json:"quantity"`
	Price          float64        `json:"price"`
	Specifications map[string]any `json:"specifications,omitempty"`
}

type ExtractedProposalData struct {
	Items        []ProposalItem `json:"items"`
	TotalPrice   float64        `json:"totalPrice"`
	DeliveryDays int            `json:"deliveryDays"`
	PaymentTerms string         `json:"paymentTerms"`
	Warranty     string         `json:"warranty,omitempty"`
}

type Proposal struct {
	ID                  string                `json:"id"`
	RFPID               string                `json:"rfpId"`
	VendorID            string                `json:"vendorId"`
	VendorName          string                `json:"vendorName"`
	VendorEmail         string                `json:"vendorEmail"`
	RawEmailBody        string                `json:"rawEmailBody"`
	ExtractedData       ExtractedProposalData `json:"extractedData"`
	AIScore             *float64              `json:"aiScore"`
	AIEvaluation        *string               `json:"aiEvaluation"`
	UsedFallbackParsing bool                  `json:"usedFallbackParsing"`
	InboundEmailID      string                `json:"inboundEmailId,omitempty"`
	CreatedAt           string                `json:"createdAt"`
}

type ProcessProposalRequest struct {
	VendorEmail string `json:"vendorEmail"`
	EmailBody   string `json:"emailBody"`
}

type ProcessProposalResult struct {
	Success    bool   `json:"success"`
	ProposalID string `json:"proposalId"`
}

type AIRecommendation struct {
	RecommendedVendorID string `json:"recommendedVendorId"`
	Reasoning           string `json:"reasoning"`
	ComparisonSummary   string `json:"comparisonSummary"`
}

type ProposalComparison struct {
	RFPID            string            `json:"rfpId"`
	RFPTitle         string            `json:"rfpTitle"`
	Proposals        []Proposal        `json:"proposals"`
	AIRecommendation *AIRecommendation `json:"aiRecommendation,omitempty"`
}

// Recommended returns the proposal the AI recommendation points at. The
// backend has sent both proposal ids and vendor ids in recommendedVendorId,
// so both are matched.
func (c ProposalComparison) Recommended() (Proposal, bool) {
	if c.AIRecommendation == nil || c.AIRecommendation.RecommendedVendorID == "" {
		return Proposal{}, false
	}
	id := c.AIRecommendation.RecommendedVendorID
	for _, p := range c.Proposals {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range c.Proposals {
		if p.VendorID == id {
			return p, true
		}
	}
	return Proposal{}, false
}

type TopVendor struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type ProposalStats struct {
	TotalProposals int        `json:"totalProposals"`
	AverageScore   float64    `json:"averageScore"`
	HighestScore   float64    `json:"highestScore"`
	LowestScore    float64    `json:"lowestScore"`
	TopVendor      *TopVendor `json:"topVendor,omitempty"`
}

type EmailRef struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// InboundEmail is a vendor reply received by the ingestion webhook.
type InboundEmail struct {
	ID              string    `json:"id"`
	EmailID         string    `json:"emailId"`
	From            string    `json:"from"`
	Subject         string    `json:"subject"`
	RawBody         string    `json:"rawBody"`
	RFPID           *string   `json:"rfpId"`
	VendorID        *string   `json:"vendorId"`
	Processed       bool      `json:"processed"`
	ProcessingError *string   `json:"processingError"`
	ProposalID      *string   `json:"proposalId"`
	CreatedAt       string    `json:"createdAt"`
	ProcessedAt     *string   `json:"processedAt"`
	RFP             *EmailRef `json:"rfp,omitempty"`
	Vendor          *EmailRef `json:"vendor,omitempty"`
}

type ReparseResult struct {
	Success    bool   `json:"success"`
	ProposalID string `json:"proposalId,omitempty"`
}
