package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyAddresses(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    geoHits
	}{
		{"crimea republic", "АР Крим, м. Сімферополь, вул. Київська, 10", geoHits{crimea: true}},
		{"sevastopol", "м. Севастополь, вул. Леніна, 2", geoHits{crimea: true}},
		{"donetsk city", "Донецька обл., м. Донецьк, пр. Миру, 4", geoHits{donetsk: true}},
		{"donetsk controlled", "Донецька обл., м. Краматорськ, вул. Шкільна, 1", geoHits{}},
		{"settlement without region", "м. Горлівка, вул. Леніна, 1", geoHits{}},
		{"luhansk town", "Луганська область, смт. Сорокине, вул. Миру, 3", geoHits{luhansk: true}},
		{"luhansk city", "Луганська обл., м. Луганськ, вул. Оборонна, 7", geoHits{luhansk: true}},
		{"kyiv", "м. Київ, вул. Хрещатик, 1", geoHits{}},
		{"crimea peninsula", "Україна, Кримський півострів, м. Ялта", geoHits{crimea: true}},
		{"crimea bare name", "Україна, Крим, м. Ялта, вул. Садова, 5", geoHits{crimea: true}},
		{"republic of crimea", "Республіка Крим, м. Керч, вул. Морська, 8", geoHits{crimea: true}},
		{"sevastopol street in kyiv", "м. Київ, вул. Севастопольська, 12", geoHits{}},
		{"sevastopol square in kyiv", "м. Київ, Севастопольська площа, 1", geoHits{}},
		{"crimean street in lviv", "м. Львів, вул. Кримська, 3", geoHits{}},
		{"crimean lane in kharkiv", "Харківська обл., м. Харків, пров. Кримський, 4", geoHits{}},
		{"crimean boulevard", "м. Одеса, бульвар Кримський, 9", geoHits{}},
		{"region name without settlement prefix", "Донецька обл., Донецький р-н", geoHits{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyAddresses([]string{tt.address}))
		})
	}
}

func TestClassifyAddresses_AnyAddress(t *testing.T) {
	hits := classifyAddresses([]string{
		"м. Київ, вул. Хрещатик, 1",
		"Донецька обл., м. Макіївка, вул. Гірників, 5",
	})
	assert.Equal(t, geoHits{donetsk: true}, hits)
}
