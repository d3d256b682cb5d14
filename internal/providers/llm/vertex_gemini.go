package llm

import (
	"context"
	"errors"
	"fmt"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

type VertexGemini struct {
	client            *vertexgenai.Client
	model             *vertexgenai.GenerativeModel
	prediction        *aiplatform.PredictionClient
	embeddingEndpoint string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName, embeddingModel string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	if embeddingModel == "" {
		embeddingModel = "text-embedding-004"
	}

	pc, err := aiplatform.NewPredictionClient(ctx,
		option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)))
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return &VertexGemini{
		client:     c,
		model:      c.GenerativeModel(modelName),
		prediction: pc,
		embeddingEndpoint: fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s",
			projectID, location, embeddingModel),
	}, nil
}

func (v *VertexGemini) Close() error {
	perr := v.prediction.Close()
	if err := v.client.Close(); err != nil {
		return err
	}
	return perr
}

func (v *VertexGemini) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := v.model.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return "", err
	}

	out := extractText(resp)
	if out == "" {
		return "", errors.New("empty model response")
	}
	return out, nil
}

func (v *VertexGemini) StreamAnswer(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)

		it := v.model.GenerateContentStream(ctx, vertexgenai.Text(prompt))
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errs <- err
				return
			}

			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if t, ok := part.(vertexgenai.Text); ok && string(t) != "" {
						out <- string(t)
					}
				}
			}
		}
	}()

	return out, errs
}

// EmbedText goes through the prediction endpoint; the generative client does
// not expose embedding models.
func (v *VertexGemini) EmbedText(ctx context.Context, text string) ([]float32, error) {
	inst, err := structpb.NewValue(map[string]any{"content": text})
	if err != nil {
		return nil, err
	}

	resp, err := v.prediction.Predict(ctx, &aiplatformpb.PredictRequest{
		Endpoint:  v.embeddingEndpoint,
		Instances: []*structpb.Value{inst},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Predictions) == 0 {
		return nil, errors.New("empty embedding response")
	}

	values := resp.Predictions[0].GetStructValue().
		GetFields()["embeddings"].GetStructValue().
		GetFields()["values"].GetListValue().GetValues()
	if len(values) == 0 {
		return nil, errors.New("embedding response has no values")
	}

	vec := make([]float32, len(values))
	for i, val := range values {
		vec[i] = float32(val.GetNumberValue())
	}
	return vec, nil
}

func extractText(resp *vertexgenai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var out string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				out += string(t)
			}
		}
	}
	return out
}
