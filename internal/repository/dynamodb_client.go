package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"rfp-assistant/internal/domain"
)

const (
	skPrefixMsg = "MSG#"
	skMeta      = "META#"
	ttlDuration = 90 * 24 * time.Hour
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Client stores chat messages and conversation metadata in a single table.
// One partition holds one user's conversation with one expert.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func conversationPK(userID, expertType string) string {
	return "USER#" + userID + "#EXPERT#" + expertType
}

// msgSK orders messages by timestamp; seq breaks ties inside one exchange.
func msgSK(ts time.Time, seq int) string {
	return skPrefixMsg + ts.UTC().Format(time.RFC3339Nano) + "#" + strconv.Itoa(seq)
}

func (c *Client) ttlValue() int64 {
	return c.now().Add(ttlDuration).Unix()
}

// GetConversation returns the metadata record for a user/expert pair.
// The boolean is false when no exchange has been saved yet.
func (c *Client) GetConversation(ctx context.Context, userID, expertType string) (domain.ConversationMeta, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: conversationPK(userID, expertType)},
			"SK": &types.AttributeValueMemberS{Value: skMeta},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return domain.ConversationMeta{}, false, fmt.Errorf("repository: GetConversation get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.ConversationMeta{}, false, nil
	}

	meta, err := itemToMeta(out.Item)
	if err != nil {
		return domain.ConversationMeta{}, false, fmt.Errorf("repository: GetConversation decode: %w", err)
	}
	return meta, true, nil
}

// GetHistory returns up to limit of the most recent messages in
// chronological order.
func (c *Client) GetHistory(ctx context.Context, userID, expertType string, limit int) ([]domain.Message, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: conversationPK(userID, expertType)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixMsg},
		},
		// Read newest first so LIMIT favors the most recent messages.
		ScanIndexForward: aws.Bool(false),
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(limit))
	}

	out, err := c.api.Query(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("repository: GetHistory query: %w", err)
	}

	msgs := make([]domain.Message, 0, len(out.Items))
	for _, item := range out.Items {
		msg, err := itemToMessage(item)
		if err != nil {
			return nil, fmt.Errorf("repository: GetHistory unmarshal: %w", err)
		}
		msgs = append(msgs, msg)
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// SaveExchange writes the user message, the assistant reply and the updated
// metadata in one transaction.
func (c *Client) SaveExchange(ctx context.Context, user, assistant domain.Message, meta domain.ConversationMeta) error {
	for _, m := range []domain.Message{user, assistant} {
		if m.PK == "" || m.SK == "" {
			return errors.New("repository: SaveExchange: message PK and SK are required")
		}
	}
	if meta.PK == "" || meta.SK == "" {
		return errors.New("repository: SaveExchange: meta PK and SK are required")
	}

	_, err := c.api.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(c.tableName),
					Item:                messageItem(user),
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(c.tableName),
					Item:                messageItem(assistant),
					ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
				},
			},
			{
				Put: &types.Put{
					TableName: aws.String(c.tableName),
					Item:      metaItem(meta),
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("repository: SaveExchange: %w", err)
	}
	return nil
}

// SaveCompletedExchange keys a confirmed user/assistant pair into the
// user's partition and persists it with the new turn count.
func (c *Client) SaveCompletedExchange(ctx context.Context, userID string, user, assistant domain.Message, turns int) error {
	userMsg, err := c.keyed(userID, user, 0)
	if err != nil {
		return fmt.Errorf("repository: SaveCompletedExchange: %w", err)
	}
	assistantMsg, err := c.keyed(userID, assistant, 1)
	if err != nil {
		return fmt.Errorf("repository: SaveCompletedExchange: %w", err)
	}
	meta := c.NewConversationMeta(userID, user.ExpertType, user.ConversationID, turns)
	if err := c.SaveExchange(ctx, userMsg, assistantMsg, meta); err != nil {
		return fmt.Errorf("repository: SaveCompletedExchange: %w", err)
	}
	return nil
}

func (c *Client) keyed(userID string, m domain.Message, seq int) (domain.Message, error) {
	ts, err := time.Parse(time.RFC3339Nano, m.Timestamp)
	if err != nil {
		return domain.Message{}, fmt.Errorf("message %q timestamp: %w", m.ID, err)
	}
	m.PK = conversationPK(userID, m.ExpertType)
	m.SK = msgSK(ts, seq)
	m.TTL = c.ttlValue()
	return m, nil
}

// NewConversationMeta constructs a ConversationMeta record.
func (c *Client) NewConversationMeta(userID, expertType, conversationID string, turns int) domain.ConversationMeta {
	return domain.ConversationMeta{
		PK:             conversationPK(userID, expertType),
		SK:             skMeta,
		ConversationID: conversationID,
		ExpertType:     expertType,
		LastActivity:   c.now().UTC().Format(time.RFC3339),
		Turns:          turns,
		TTL:            c.ttlValue(),
	}
}

func itemToMessage(item map[string]types.AttributeValue) (domain.Message, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.Message{}, err
	}
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.Message{}, err
	}
	id, err := strAttr(item, "id")
	if err != nil {
		return domain.Message{}, err
	}
	role, err := strAttr(item, "role")
	if err != nil {
		return domain.Message{}, err
	}
	content, _ := strAttr(item, "content") // allow empty
	convID, _ := strAttr(item, "conversationId")
	expertType, _ := strAttr(item, "expertType")
	ts, _ := strAttr(item, "timestamp")

	return domain.Message{
		PK:             pk,
		SK:             sk,
		ID:             id,
		ConversationID: convID,
		ExpertType:     expertType,
		Role:           role,
		Content:        content,
		Timestamp:      ts,
	}, nil
}

func itemToMeta(item map[string]types.AttributeValue) (domain.ConversationMeta, error) {
	convID, err := strAttr(item, "conversationId")
	if err != nil {
		return domain.ConversationMeta{}, err
	}
	turns, err := intAttr(item, "turns")
	if err != nil {
		return domain.ConversationMeta{}, err
	}
	pk, _ := strAttr(item, "PK")
	expertType, _ := strAttr(item, "expertType")
	last, _ := strAttr(item, "lastActivity")
	return domain.ConversationMeta{
		PK:             pk,
		SK:             skMeta,
		ConversationID: convID,
		ExpertType:     expertType,
		LastActivity:   last,
		Turns:          turns,
	}, nil
}

func messageItem(msg domain.Message) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":             &types.AttributeValueMemberS{Value: msg.PK},
		"SK":             &types.AttributeValueMemberS{Value: msg.SK},
		"id":             &types.AttributeValueMemberS{Value: msg.ID},
		"conversationId": &types.AttributeValueMemberS{Value: msg.ConversationID},
		"expertType":     &types.AttributeValueMemberS{Value: msg.ExpertType},
		"role":           &types.AttributeValueMemberS{Value: msg.Role},
		"content":        &types.AttributeValueMemberS{Value: msg.Content},
		"timestamp":      &types.AttributeValueMemberS{Value: msg.Timestamp},
		"ttl":            &types.AttributeValueMemberN{Value: strconv.FormatInt(msg.TTL, 10)},
	}
}

func metaItem(meta domain.ConversationMeta) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":             &types.AttributeValueMemberS{Value: meta.PK},
		"SK":             &types.AttributeValueMemberS{Value: meta.SK},
		"conversationId": &types.AttributeValueMemberS{Value: meta.ConversationID},
		"expertType":     &types.AttributeValueMemberS{Value: meta.ExpertType},
		"lastActivity":   &types.AttributeValueMemberS{Value: meta.LastActivity},
		"turns":          &types.AttributeValueMemberN{Value: strconv.Itoa(meta.Turns)},
		"ttl":            &types.AttributeValueMemberN{Value: strconv.FormatInt(meta.TTL, 10)},
	}
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
