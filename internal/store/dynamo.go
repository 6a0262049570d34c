package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// DynamoDB key constants for the single-table design.
const (
	pkPrefix = "SESSION#"
	skMeta   = "META"
)

// statusTimestamp maps a status value to the timeline attribute stamped when
// the session enters that status.
var statusTimestamp = map[string]string{
	StatusQueued:     "queuedAt",
	StatusStitching:  "stitchingStartedAt",
	StatusStitched:   "stitchingCompletedAt",
	StatusOptimizing: "optimizingStartedAt",
	StatusComplete:   "completedAt",
}

// DynamoStore implements SessionStore using AWS DynamoDB.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// Compile-time interface check.
var _ SessionStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
// The client should be initialized from the shared AWS config.
func NewDynamoStore(client *dynamodb.Client, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
	}
}

// Client exposes the underlying DynamoDB client for stores that share it.
func (s *DynamoStore) Client() *dynamodb.Client {
	return s.client
}

// sessionPK returns the partition key for a session.
func sessionPK(sessionID string) string {
	return pkPrefix + sessionID
}

// metaKey returns the full primary key of a session record.
func metaKey(sessionID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: sessionPK(sessionID)},
		"SK": &types.AttributeValueMemberS{Value: skMeta},
	}
}

func nowUnix() int64 {
	return time.Now().Unix()
}

// --- Session operations ---

func (s *DynamoStore) PutSession(ctx context.Context, session *Session) error {
	now := nowUnix()
	if session.CreatedAt == 0 {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.Videos == nil {
		session.Videos = map[string]*VideoEntry{}
	}

	item, err := attributevalue.MarshalMap(session)
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", session.ID, err)
	}

	// Key and TTL attributes overwrite any conflicting keys from the struct.
	expires := time.Now().Add(SessionTTL).Unix()
	item["PK"] = &types.AttributeValueMemberS{Value: sessionPK(session.ID)}
	item["SK"] = &types.AttributeValueMemberS{Value: skMeta}
	item["expiresAt"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expires, 10)}

	// An empty videos map must still round-trip as a map attribute so that
	// SetVideoEntry's document-path update has a parent to write into.
	if len(session.Videos) == 0 {
		item["videos"] = &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{}}
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put session %s: %w", session.ID, err)
	}

	log.Debug().Str("sessionId", session.ID).Str("status", session.Status).Msg("Session persisted to DynamoDB")
	return nil
}

func (s *DynamoStore) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key:       metaKey(sessionID),
	})
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var session Session
	if err := attributevalue.UnmarshalMap(result.Item, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	session.ID = sessionID
	if exp, ok := result.Item["expiresAt"].(*types.AttributeValueMemberN); ok {
		session.ExpiresAt, _ = strconv.ParseInt(exp.Value, 10, 64)
	}
	return &session, nil
}

func (s *DynamoStore) UpdateSessionStatus(ctx context.Context, sessionID, status string) error {
	now := strconv.FormatInt(nowUnix(), 10)

	expr := "SET #s = :s, updatedAt = :now"
	values := map[string]types.AttributeValue{
		":s":   &types.AttributeValueMemberS{Value: status},
		":now": &types.AttributeValueMemberN{Value: now},
	}
	if field, ok := statusTimestamp[status]; ok {
		expr += ", " + field + " = :now"
	}
	if IsFailed(status) {
		expr += ", failedAt = :now"
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              metaKey(sessionID),
		UpdateExpression: aws.String(expr),
		ExpressionAttributeNames: map[string]string{
			"#s": "status", // "status" is a DynamoDB reserved word
		},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("update session status %s -> %s: %w", sessionID, status, err)
	}

	log.Debug().Str("sessionId", sessionID).Str("status", status).Msg("Session status updated")
	return nil
}

func (s *DynamoStore) SetVideoEntry(ctx context.Context, sessionID, suggestionID string, entry *VideoEntry) error {
	av, err := attributevalue.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal video entry %s/%s: %w", sessionID, suggestionID, err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              metaKey(sessionID),
		UpdateExpression: aws.String("SET videos.#vid = :v, updatedAt = :now"),
		ExpressionAttributeNames: map[string]string{
			"#vid": suggestionID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v":   av,
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(nowUnix(), 10)},
		},
		// Guard against writing entries for sessions that no longer exist.
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		return fmt.Errorf("set video entry %s/%s: %w", sessionID, suggestionID, err)
	}

	log.Debug().
		Str("sessionId", sessionID).
		Str("suggestionId", suggestionID).
		Str("videoStatus", entry.Status).
		Msg("Video entry updated")
	return nil
}

// mergeVideoExpr builds the update expression for MergeVideoEntry: one
// document-path SET per attribute present on the entry, in sorted order.
// Fields the entry leaves at their zero value are omitted by the dynamodbav
// omitempty tags, so attributes written by earlier stages stay untouched.
func mergeVideoExpr(suggestionID string, entry *VideoEntry) (string, map[string]string, map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return "", nil, nil, fmt.Errorf("marshal video entry %s: %w", suggestionID, err)
	}

	attrs := make([]string, 0, len(item))
	for attr := range item {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)

	expr := "SET updatedAt = :now"
	names := map[string]string{"#vid": suggestionID}
	values := map[string]types.AttributeValue{
		":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(nowUnix(), 10)},
	}
	for i, attr := range attrs {
		name := fmt.Sprintf("#f%d", i)
		value := fmt.Sprintf(":f%d", i)
		expr += fmt.Sprintf(", videos.#vid.%s = %s", name, value)
		names[name] = attr
		values[value] = item[attr]
	}
	return expr, names, values, nil
}

func (s *DynamoStore) MergeVideoEntry(ctx context.Context, sessionID, suggestionID string, entry *VideoEntry) error {
	expr, names, values, err := mergeVideoExpr(suggestionID, entry)
	if err != nil {
		return err
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       metaKey(sessionID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		// Merging into a missing entry would create a partial record; the
		// upload tracker creates the entry before any stage merges into it.
		ConditionExpression: aws.String("attribute_exists(videos.#vid)"),
	})
	if err != nil {
		return fmt.Errorf("merge video entry %s/%s: %w", sessionID, suggestionID, err)
	}

	log.Debug().
		Str("sessionId", sessionID).
		Str("suggestionId", suggestionID).
		Str("videoStatus", entry.Status).
		Msg("Video entry merged")
	return nil
}

func (s *DynamoStore) SetStitchProgress(ctx context.Context, sessionID string, currentItem, totalItems int, step string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              metaKey(sessionID),
		UpdateExpression: aws.String("SET currentItem = :c, totalItems = :t, processingStep = :p, updatedAt = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":   &types.AttributeValueMemberN{Value: strconv.Itoa(currentItem)},
			":t":   &types.AttributeValueMemberN{Value: strconv.Itoa(totalItems)},
			":p":   &types.AttributeValueMemberS{Value: step},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(nowUnix(), 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("set stitch progress %s (%d/%d): %w", sessionID, currentItem, totalItems, err)
	}
	return nil
}

func (s *DynamoStore) SetSessionError(ctx context.Context, sessionID, status, message string) error {
	now := strconv.FormatInt(nowUnix(), 10)
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              metaKey(sessionID),
		UpdateExpression: aws.String("SET #s = :s, errorMessage = :m, failedAt = :now, updatedAt = :now"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":s":   &types.AttributeValueMemberS{Value: status},
			":m":   &types.AttributeValueMemberS{Value: message},
			":now": &types.AttributeValueMemberN{Value: now},
		},
	})
	if err != nil {
		return fmt.Errorf("set session error %s -> %s: %w", sessionID, status, err)
	}

	log.Debug().Str("sessionId", sessionID).Str("status", status).Msg("Session marked failed")
	return nil
}

func (s *DynamoStore) SetResults(ctx context.Context, sessionID string, results *Results) error {
	av, err := attributevalue.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results %s: %w", sessionID, err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              metaKey(sessionID),
		UpdateExpression: aws.String("SET results = :r, updatedAt = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r":   av,
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(nowUnix(), 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("set results %s: %w", sessionID, err)
	}

	log.Debug().Str("sessionId", sessionID).Msg("Session results persisted")
	return nil
}

func (s *DynamoStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.tableName,
		Key:       metaKey(sessionID),
	})
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}

	log.Debug().Str("sessionId", sessionID).Msg("Session deleted")
	return nil
}

func (s *DynamoStore) ListSessions(ctx context.Context) ([]*Session, error) {
	input := &dynamodb.ScanInput{
		TableName:        &s.tableName,
		FilterExpression: aws.String("SK = :meta"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":meta": &types.AttributeValueMemberS{Value: skMeta},
		},
	}

	var sessions []*Session

	// Handle pagination — DynamoDB returns up to 1MB per Scan call.
	for {
		result, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan sessions: %w", err)
		}

		for _, item := range result.Items {
			var session Session
			if err := attributevalue.UnmarshalMap(item, &session); err != nil {
				log.Warn().Err(err).Msg("Failed to unmarshal session during scan, skipping")
				continue
			}
			if pk, ok := item["PK"].(*types.AttributeValueMemberS); ok {
				session.ID = pk.Value[len(pkPrefix):]
			}
			if exp, ok := item["expiresAt"].(*types.AttributeValueMemberN); ok {
				session.ExpiresAt, _ = strconv.ParseInt(exp.Value, 10, 64)
			}
			sessions = append(sessions, &session)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return sessions, nil
}
