package debt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semdelta/debt"
	"github.com/c360studio/semdelta/model"
)

func modelWithCustomer(name string, props ...model.Property) *model.Ontology {
	return &model.Ontology{
		Name:    name,
		Version: "1.0",
		Entities: []model.Entity{
			{Name: "Customer", EntityType: "standard", Properties: props},
		},
	}
}

func TestAnalyzeInsufficientModels(t *testing.T) {
	analyzer := debt.NewAnalyzer(0)

	_, err := analyzer.Analyze(map[string]*model.Ontology{
		"Sales": modelWithCustomer("Sales"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, debt.ErrInsufficientModels)
}

func TestAnalyzeNoConflicts(t *testing.T) {
	models := map[string]*model.Ontology{
		"Sales":   modelWithCustomer("Sales", model.Property{Name: "Id", DataType: "Integer"}, model.Property{Name: "Name", DataType: "String"}),
		"Finance": modelWithCustomer("Finance", model.Property{Name: "Id", DataType: "Integer"}, model.Property{Name: "Name", DataType: "String"}),
	}

	report, err := debt.NewAnalyzer(0).Analyze(models)
	require.NoError(t, err)

	assert.Empty(t, report.Conflicts)
	assert.Equal(t, 0, report.Summary.TotalConflicts)
	assert.Equal(t, []string{"Finance", "Sales"}, report.Analyzed)
	require.Len(t, report.Recommendations, 1)
	assert.Contains(t, report.Recommendations[0], "No semantic conflicts")
}

func TestAnalyzePropertyTypeConflict(t *testing.T) {
	models := map[string]*model.Ontology{
		"Sales":   modelWithCustomer("Sales", model.Property{Name: "CustomerId", DataType: "Integer"}),
		"Finance": modelWithCustomer("Finance", model.Property{Name: "CustomerId", DataType: "String"}),
	}

	report, err := debt.NewAnalyzer(0).Analyze(models)
	require.NoError(t, err)

	require.Len(t, report.Conflicts, 1)
	c := report.Conflicts[0]
	assert.Equal(t, debt.KindType, c.Kind)
	assert.Equal(t, debt.SeverityCritical, c.Severity)
	assert.Equal(t, "Customer.CustomerId", c.Name)
	assert.Equal(t, []string{"Finance", "Sales"}, c.Sources)
	assert.Equal(t, "Type: Integer", c.Details["Sales"])
	assert.Equal(t, "Type: String", c.Details["Finance"])
}

func TestAnalyzeRelationshipConflict(t *testing.T) {
	sales := modelWithCustomer("Sales", model.Property{Name: "Id", DataType: "Integer"})
	sales.Relationships = []model.Relationship{
		{FromEntity: "Order", ToEntity: "Customer", RelationshipType: "related_to", Cardinality: "many-to-one"},
	}
	finance := modelWithCustomer("Finance", model.Property{Name: "Id", DataType: "Integer"})
	finance.Relationships = []model.Relationship{
		{FromEntity: "Order", ToEntity: "Customer", RelationshipType: "related_to", Cardinality: "one-to-many"},
	}

	report, err := debt.NewAnalyzer(0).Analyze(map[string]*model.Ontology{
		"Sales": sales, "Finance": finance,
	})
	require.NoError(t, err)

	require.Len(t, report.Conflicts, 1)
	c := report.Conflicts[0]
	assert.Equal(t, debt.KindRelationship, c.Kind)
	assert.Equal(t, debt.SeverityWarning, c.Severity)
	assert.Equal(t, "Order → Customer", c.Name)
}

func TestAnalyzeEntityStructureSeverity(t *testing.T) {
	tests := []struct {
		name   string
		props1 []string
		props2 []string
		want   debt.Severity
	}{
		// overlap 2/4 = 0.5 falls in the warning bracket
		{"half overlap", []string{"Id", "Name", "Email"}, []string{"Id", "Name", "CreditLimit"}, debt.SeverityWarning},
		// overlap 1/5 = 0.2
		{"low overlap", []string{"Id", "A", "B"}, []string{"Id", "C", "D"}, debt.SeverityCritical},
		// overlap 4/5 = 0.8
		{"high overlap", []string{"Id", "Name", "Email", "Phone"}, []string{"Id", "Name", "Email", "Phone", "Fax"}, debt.SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mk := func(name string, names []string) *model.Ontology {
				props := make([]model.Property, len(names))
				for i, n := range names {
					props[i] = model.Property{Name: n, DataType: "String"}
				}
				return modelWithCustomer(name, props...)
			}

			report, err := debt.NewAnalyzer(0).Analyze(map[string]*model.Ontology{
				"source1": mk("source1", tt.props1),
				"source2": mk("source2", tt.props2),
			})
			require.NoError(t, err)

			var entityConflicts []debt.Conflict
			for _, c := range report.Conflicts {
				if c.Kind == debt.KindEntity {
					entityConflicts = append(entityConflicts, c)
				}
			}
			require.Len(t, entityConflicts, 1)
			assert.Equal(t, tt.want, entityConflicts[0].Severity)
			assert.Equal(t, "Customer", entityConflicts[0].Name)
		})
	}
}

func TestAnalyzeRuleConflict(t *testing.T) {
	mk := func(name, condition string) *model.Ontology {
		return &model.Ontology{
			Name:    name,
			Version: "1.0",
			BusinessRules: []model.BusinessRule{
				{Name: "HighValueOrder", Condition: condition, Action: "flag", Priority: 1},
			},
		}
	}

	t.Run("dissimilar conditions are critical", func(t *testing.T) {
		report, err := debt.NewAnalyzer(0).Analyze(map[string]*model.Ontology{
			"Sales":   mk("Sales", "Amount > 10000"),
			"Finance": mk("Finance", "Region = 'EMEA' AND Tier = 'Gold'"),
		})
		require.NoError(t, err)

		require.Len(t, report.Conflicts, 1)
		assert.Equal(t, debt.KindRule, report.Conflicts[0].Kind)
		assert.Equal(t, debt.SeverityCritical, report.Conflicts[0].Severity)
	})

	t.Run("near-identical conditions are a warning", func(t *testing.T) {
		report, err := debt.NewAnalyzer(0).Analyze(map[string]*model.Ontology{
			"Sales":   mk("Sales", "Amount > 10000"),
			"Finance": mk("Finance", "Amount > 10001"),
		})
		require.NoError(t, err)

		require.Len(t, report.Conflicts, 1)
		assert.Equal(t, debt.SeverityWarning, report.Conflicts[0].Severity)
	})

	t.Run("worst pair decides severity across three sources", func(t *testing.T) {
		report, err := debt.NewAnalyzer(0).Analyze(map[string]*model.Ontology{
			"Sales":   mk("Sales", "Amount > 10000"),
			"Finance": mk("Finance", "Amount > 10001"),
			"Ops":     mk("Ops", "Region = 'EMEA' AND Tier = 'Gold'"),
		})
		require.NoError(t, err)

		require.Len(t, report.Conflicts, 1)
		assert.Equal(t, debt.SeverityCritical, report.Conflicts[0].Severity)
		assert.Equal(t, []string{"Finance", "Ops", "Sales"}, report.Conflicts[0].Sources)
	})
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, debt.Similarity("Amount > 10000", "amount > 10000"))
	assert.Equal(t, 1.0, debt.Similarity("", ""))
	assert.InDelta(t, 0.93, debt.Similarity("Amount > 10000", "Amount > 10001"), 0.05)
	assert.Less(t, debt.Similarity("Amount > 10000", "Region = 'EMEA'"), 0.5)
}

func TestAnalyzeRecommendations(t *testing.T) {
	models := map[string]*model.Ontology{
		"Sales":   modelWithCustomer("Sales", model.Property{Name: "CustomerId", DataType: "Integer"}, model.Property{Name: "Email", DataType: "String"}),
		"Finance": modelWithCustomer("Finance", model.Property{Name: "CustomerId", DataType: "String"}, model.Property{Name: "CreditLimit", DataType: "Decimal"}),
	}

	report, err := debt.NewAnalyzer(0).Analyze(models)
	require.NoError(t, err)

	assert.Greater(t, report.Summary.Critical, 0)
	joined := ""
	for _, r := range report.Recommendations {
		joined += r + "\n"
	}
	assert.Contains(t, joined, "critical conflict(s)")
	assert.Contains(t, joined, "shared data dictionary")
	assert.Contains(t, joined, "master schema")
}

func TestReportMarkdown(t *testing.T) {
	models := map[string]*model.Ontology{
		"Sales":   modelWithCustomer("Sales", model.Property{Name: "CustomerId", DataType: "Integer"}),
		"Finance": modelWithCustomer("Finance", model.Property{Name: "CustomerId", DataType: "String"}),
	}

	report, err := debt.NewAnalyzer(0).Analyze(models)
	require.NoError(t, err)

	md := report.Markdown()
	assert.Contains(t, md, "# Semantic Debt Analysis Report")
	assert.Contains(t, md, "## Critical Conflicts")
	assert.Contains(t, md, "### Customer.CustomerId")
	assert.Contains(t, md, "## Recommendations")
}
