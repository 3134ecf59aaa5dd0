package adapters

import (
	"context"
	"time"

	"github.com/Shogun05/VoiceFrame/application/ports/outbound"
	"github.com/Shogun05/VoiceFrame/config"
	"github.com/Shogun05/VoiceFrame/domain"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

type dynamoRunItem struct {
	RunId        string `dynamodbav:"run_id"`
	State        string `dynamodbav:"state"`
	Prompt       string `dynamodbav:"prompt"`
	CreatedAt    string `dynamodbav:"created_at"`
	UpdatedAt    string `dynamodbav:"updated_at"`
	ErrorStage   string `dynamodbav:"error_stage,omitempty"`
	ErrorMessage string `dynamodbav:"error_message,omitempty"`
	Degraded     bool   `dynamodbav:"degraded"`
	TTL          int64  `dynamodbav:"ttl"`
}

type dynamoRunStore struct {
	logger       outbound.LoggerPort
	dynamoSvc    dynamodbiface.DynamoDBAPI
	dynamoConfig *config.DynamoConfig
}

func NewDynamoRunStore(logger outbound.LoggerPort, dynamoSvc dynamodbiface.DynamoDBAPI, dynamoConfig *config.DynamoConfig) outbound.RunStorePort {
	return &dynamoRunStore{
		logger:       logger,
		dynamoSvc:    dynamoSvc,
		dynamoConfig: dynamoConfig,
	}
}

func (c *dynamoRunStore) Save(ctx context.Context, run domain.PipelineRun) error {
	item := dynamoRunItem{
		RunId:     run.ID,
		State:     string(run.State),
		Prompt:    run.Prompt,
		CreatedAt: run.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: run.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Degraded:  run.Degraded,
		TTL:       time.Now().Add(time.Duration(c.dynamoConfig.TtlMinutes) * time.Minute).Unix(),
	}
	if run.Err != nil {
		item.ErrorStage = string(run.Err.Stage)
		if run.Err.Err != nil {
			item.ErrorMessage = run.Err.Err.Error()
		}
	}

	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to marshal run item", map[string]interface{}{
			"run_id": run.ID,
		})
		return err
	}

	input := &dynamodb.PutItemInput{
		Item:      av,
		TableName: aws.String(c.dynamoConfig.TableName),
	}

	_, err = c.dynamoSvc.PutItemWithContext(ctx, input)
	if err != nil {
		c.logger.ErrorWithFields(err, "Failed to save run item", map[string]interface{}{
			"run_id": run.ID,
			"state":  item.State,
		})
		return err
	}

	return nil
}
