package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProposalComparison_Recommended(t *testing.T) {
	c := ProposalComparison{
		Proposals: []Proposal{
			{ID: "p1", VendorID: "v1", VendorName: "Acme"},
			{ID: "p2", VendorID: "v2", VendorName: "Globex"},
		},
	}
	_, ok := c.Recommended()
	require.False(t, ok)

	c.AIRecommendation = &AIRecommendation{RecommendedVendorID: "p2"}
	p, ok := c.Recommended()
	require.True(t, ok)
	require.Equal(t, "Globex", p.VendorName)

	c.AIRecommendation.RecommendedVendorID = "v1"
	p, ok = c.Recommended()
	require.True(t, ok)
	require.Equal(t, "Acme", p.VendorName)

	c.AIRecommendation.RecommendedVendorID = "missing"
	_, ok = c.Recommended()
	require.False(t, ok)
}
