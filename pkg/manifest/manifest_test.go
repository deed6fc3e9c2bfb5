package manifest

import (
	"context"
	"testing"

	"github.com/biolinks/biolinks/pkg/auth"
	"github.com/biolinks/biolinks/pkg/catalog"
	"github.com/biolinks/biolinks/pkg/config"
	"github.com/biolinks/biolinks/pkg/fetchers"
	"github.com/biolinks/biolinks/pkg/layers"
	"github.com/biolinks/biolinks/pkg/orchestrator"
	"github.com/biolinks/biolinks/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roadsideSpec() config.LayerSpec {
	return config.LayerSpec{
		ID:        "roadsideWeeds",
		Name:      "Roadside Weeds",
		Component: "WeedSurveyLayer",
		Pages:     []config.PageSpec{{Page: "weeds", DefaultVisible: true}, {Page: "roadside"}},
		DataSource: &config.DataSourceSpec{
			Type:         "fulcrum",
			RequiresAuth: "user",
			Query:        `SELECT * FROM "{{formName}}/roadside" WHERE recorder = '{{who}}'`,
			TemplateVars: []config.TemplateVarSpec{
				{Var: "formName", From: AttributeFormName},
				{Var: "who", From: AttributeEmail},
			},
			Select: "$[*].species",
		},
		ShowWhen: ShowNonEmpty,
	}
}

func TestApply(t *testing.T) {
	t.Run("Apply() - Places layers on existing and new pages", testApplyPlacementFunc())
	t.Run("Apply() - Layer fetches through the orchestrator", testApplyFetchFunc())
	t.Run("Apply() - Claims quoted in query text", testClaimsQuotedFunc())
	t.Run("Apply() - Claims passed raw to structured sources", testClaimsRawStructuredFunc())
	t.Run("Apply() - Single select match is unwrapped", testSelectSingleMatchFunc())
	t.Run("Apply() - Invalid select rejected", testInvalidSelectFunc())
	t.Run("Apply() - Id collision rejected", testIdCollisionFunc())
	t.Run("Apply() - Invalid specs rejected", testInvalidSpecsFunc())
}

func testApplyPlacementFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := catalog.NewCatalog(fetchers.NewRegistry(), nil)
		pages, err := Apply([]config.LayerSpec{roadsideSpec()}, c.Pages(), c.Groups(), nil)
		require.NoError(t, err)

		registry, err := layers.NewRegistry(pages...)
		require.NoError(t, err)

		weeds := registry.GetLayersForPage("weeds")
		require.Len(t, weeds, 3)
		assert.Equal(t, "roadsideWeeds", weeds[2].Layer.ID)
		assert.True(t, weeds[2].DefaultVisible)

		assert.True(t, registry.HasPage("roadside"))
		roadside := registry.GetLayersForPage("roadside")
		require.Len(t, roadside, 1)
		assert.False(t, roadside[0].DefaultVisible)
		assert.Same(t, weeds[2].Layer, roadside[0].Layer)
	}
}

func testApplyFetchFunc() func(*testing.T) {
	return func(t *testing.T) {
		f := &testutils.FakeFetcher{Handler: func(ctx context.Context, query string, variables map[string]interface{}) (interface{}, error) {
			return []interface{}{
				map[string]interface{}{"species": "Gorse"},
				map[string]interface{}{"species": "Blackberry"},
			}, nil
		}}
		fetcherRegistry := testutils.NewFetcherRegistry(map[string]fetchers.Fetcher{"fulcrum": f})

		c := catalog.NewCatalog(fetcherRegistry, nil)
		pages, err := Apply([]config.LayerSpec{roadsideSpec()}, c.Pages(), c.Groups(), fetcherRegistry)
		require.NoError(t, err)
		registry, err := layers.NewRegistry(pages...)
		require.NoError(t, err)

		caller := &auth.CallerContext{User: &auth.Identity{Email: "robin@example.org"}, LandcareGroup: "moyston"}
		response, err := orchestrator.NewOrchestrator(registry, fetcherRegistry).Fetch(context.Background(), caller, []string{"roadsideWeeds"})
		require.NoError(t, err)

		assert.Equal(t, []interface{}{"Gorse", "Blackberry"}, response.Data["roadsideWeeds"])
		assert.Equal(t, `SELECT * FROM "Moyston LCG/roadside" WHERE recorder = 'robin@example.org'`, f.Calls()[0].Query)

		layer, _ := registry.GetLayerById("roadsideWeeds")
		assert.True(t, layer.ShouldShow(response.Data["roadsideWeeds"]))
		assert.False(t, layer.ShouldShow([]interface{}{}))
	}
}

func testClaimsQuotedFunc() func(*testing.T) {
	return func(t *testing.T) {
		f := &testutils.FakeFetcher{FetcherKind: fetchers.QueryStringKind}
		fetcherRegistry := testutils.NewFetcherRegistry(map[string]fetchers.Fetcher{"fulcrum": f})

		c := catalog.NewCatalog(fetcherRegistry, nil)
		pages, err := Apply([]config.LayerSpec{roadsideSpec()}, c.Pages(), c.Groups(), fetcherRegistry)
		require.NoError(t, err)
		registry, err := layers.NewRegistry(pages...)
		require.NoError(t, err)

		caller := &auth.CallerContext{User: &auth.Identity{Email: "o'brien@example.org"}, LandcareGroup: "moyston"}
		response, err := orchestrator.NewOrchestrator(registry, fetcherRegistry).Fetch(context.Background(), caller, []string{"roadsideWeeds"})
		require.NoError(t, err)
		assert.Empty(t, response.Errors)

		assert.Equal(t, `SELECT * FROM "Moyston LCG/roadside" WHERE recorder = 'o''brien@example.org'`, f.Calls()[0].Query)
	}
}

func testClaimsRawStructuredFunc() func(*testing.T) {
	return func(t *testing.T) {
		f := &testutils.FakeFetcher{FetcherKind: fetchers.StructuredKind}
		fetcherRegistry := testutils.NewFetcherRegistry(map[string]fetchers.Fetcher{"graphql": f})

		spec := config.LayerSpec{
			ID:    "myDetections",
			Pages: []config.PageSpec{{Page: "biolinks"}},
			DataSource: &config.DataSourceSpec{
				Type:         "graphql",
				RequiresAuth: "user",
				Query:        "query Detections($who: String!) { detections(recorder: $who) { id } }",
				TemplateVars: []config.TemplateVarSpec{{Var: "who", From: AttributeName}},
			},
		}
		pages, err := Apply([]config.LayerSpec{spec}, nil, nil, fetcherRegistry)
		require.NoError(t, err)

		vars := pages[0].Layers[0].Layer.DataSource.TemplateVars(&auth.CallerContext{User: &auth.Identity{Name: "O'Brien"}})
		assert.Equal(t, map[string]interface{}{"who": "O'Brien"}, vars)
	}
}

func testSelectSingleMatchFunc() func(*testing.T) {
	return func(t *testing.T) {
		spec := config.LayerSpec{
			ID:         "stationCount",
			Pages:      []config.PageSpec{{Page: "biolinks"}},
			DataSource: &config.DataSourceSpec{Type: "graphql", Select: "$.stations.totalCount"},
		}
		pages, err := Apply([]config.LayerSpec{spec}, nil, nil, nil)
		require.NoError(t, err)

		ds := pages[0].Layers[0].Layer.DataSource
		data, err := ds.Transform(context.Background(), map[string]interface{}{"stations": map[string]interface{}{"totalCount": int64(9)}})
		require.NoError(t, err)
		assert.Equal(t, int64(9), data)

		data, err = ds.Transform(context.Background(), map[string]interface{}{})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{}, data)

		assert.Equal(t, "stationCount", pages[0].Layers[0].Layer.Name)
		assert.Nil(t, pages[0].Layers[0].Layer.ShouldShow)
	}
}

func testInvalidSelectFunc() func(*testing.T) {
	return func(t *testing.T) {
		spec := roadsideSpec()
		spec.DataSource.Select = "$[?(@.x =="
		_, err := Apply([]config.LayerSpec{spec}, nil, nil, nil)
		assert.Error(t, err)
	}
}

func testIdCollisionFunc() func(*testing.T) {
	return func(t *testing.T) {
		c := catalog.NewCatalog(fetchers.NewRegistry(), nil)
		spec := roadsideSpec()
		spec.ID = catalog.WeedSurveysLayerID

		_, err := Apply([]config.LayerSpec{spec}, c.Pages(), nil, nil)
		assert.EqualError(t, err, "layer 'weedSurveys' is already defined")

		_, err = Apply([]config.LayerSpec{roadsideSpec(), roadsideSpec()}, nil, nil, nil)
		assert.EqualError(t, err, "layer 'roadsideWeeds' is already defined")
	}
}

func testInvalidSpecsFunc() func(*testing.T) {
	return func(t *testing.T) {
		noPages := roadsideSpec()
		noPages.Pages = nil

		badAuth := roadsideSpec()
		badAuth.DataSource.RequiresAuth = "superuser"

		badAttribute := roadsideSpec()
		badAttribute.DataSource.TemplateVars = []config.TemplateVarSpec{{Var: "x", From: "password"}}

		badShowWhen := roadsideSpec()
		badShowWhen.ShowWhen = "sometimes"

		noType := roadsideSpec()
		noType.DataSource.Type = ""

		badID := roadsideSpec()
		badID.ID = "roadside weeds"

		badPage := roadsideSpec()
		badPage.Pages = []config.PageSpec{{Page: "weeds/roadside"}}

		badVar := roadsideSpec()
		badVar.DataSource.TemplateVars = []config.TemplateVarSpec{{Var: "form name", From: "form_name"}}

		for _, spec := range []config.LayerSpec{noPages, badAuth, badAttribute, badShowWhen, noType, badID, badPage, badVar, {}} {
			_, err := Apply([]config.LayerSpec{spec}, nil, nil, nil)
			assert.Error(t, err)
		}
	}
}
