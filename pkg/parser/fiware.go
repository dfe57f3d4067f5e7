package parser

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"

	"github.com/conwetlab/privatedatasets-backend/config"
	"github.com/conwetlab/privatedatasets-backend/pkg/datamodel"
	"github.com/conwetlab/privatedatasets-backend/pkg/errdomain"
)

// FiWareName is the configuration name of the FiWare store parser.
const FiWareName = "fiware"

func init() {
	Register(FiWareName, func(cfg *config.AppConfig) Parser {
		return &FiWareParser{InstanceHost: cfg.Server.InstanceHost}
	})
}

// FiWareParser understands the purchase notifications sent by the
// FiWare store:
//
//	{"customer_name": "...", "resources": [{"url": ".../dataset/<id>"}, ...]}
//
// Every resource URL must point at a dataset of this catalog instance;
// a foreign host fails the whole payload.
type FiWareParser struct {
	InstanceHost string
}

var datasetPathRe = regexp.MustCompile(`^/dataset/([^/]+)`)

// Parse implements the Parser interface.
func (p *FiWareParser) Parse(_ context.Context, payload []byte) (*datamodel.ParsedAcquisition, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, errdomain.NewMalformedNotification("Invalid notification format")
	}

	for _, field := range []string{"customer_name", "resources"} {
		if _, ok := body[field]; !ok {
			return nil, errdomain.NewMalformedNotification("%s not found in the request", field)
		}
	}

	var userName string
	if err := json.Unmarshal(body["customer_name"], &userName); err != nil {
		return nil, errdomain.NewMalformedNotification("Invalid customer_name format")
	}

	var resources []json.RawMessage
	if err := json.Unmarshal(body["resources"], &resources); err != nil {
		return nil, errdomain.NewMalformedNotification("Invalid resources format")
	}

	datasets := []string{}
	for _, rawResource := range resources {
		var resource struct {
			URL *string `json:"url"`
		}
		if err := json.Unmarshal(rawResource, &resource); err != nil || resource.URL == nil {
			return nil, errdomain.NewMalformedNotification("Invalid resource format")
		}

		parsedURL, err := url.Parse(*resource.URL)
		if err != nil {
			return nil, errdomain.NewMalformedNotification("Invalid resource format")
		}

		match := datasetPathRe.FindStringSubmatch(parsedURL.Path)
		if match == nil {
			return nil, errdomain.NewMalformedNotification("Invalid resource format")
		}

		datasetID := match[1]
		if parsedURL.Host != p.InstanceHost {
			return nil, errdomain.NewMalformedNotification(
				"Dataset %s is associated with the catalog instance located at %s", datasetID, parsedURL.Host)
		}
		datasets = append(datasets, datasetID)
	}

	return &datamodel.ParsedAcquisition{
		UsersDatasets: []datamodel.UserDatasets{{User: userName, Datasets: datasets}},
	}, nil
}
