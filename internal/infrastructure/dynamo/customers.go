package dynamo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/contact-verifier/internal/domain"
)

// maxTransactItems is the DynamoDB limit on actions per TransactWriteItems call.
const maxTransactItems = 100

// CustomerAPI is the subset of *dynamodb.Client used by CustomerRepo.
type CustomerAPI interface {
	dynamodb.QueryAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// CustomerRepo provides typed DynamoDB operations for the customers table.
// PK: customer_id. GSIs: <channel>_validation_status-index, primary_<channel>-index.
type CustomerRepo struct {
	client    CustomerAPI
	tableName string
}

func NewCustomerRepo(client CustomerAPI, tableName string) *CustomerRepo {
	return &CustomerRepo{client: client, tableName: tableName}
}

// Put stores c, defaulting empty validation statuses to unknown since index
// keys cannot be empty strings.
func (r *CustomerRepo) Put(ctx context.Context, c *domain.Customer) error {
	c.Normalize()
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CustomerRepo) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldCustomerID, customerID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("customer not found: %w", domain.ErrNotFound)
	}
	var c domain.Customer
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update applies a partial SET to an existing customer.
// Returns ErrNotFound when no customer has the given id.
func (r *CustomerRepo) Update(ctx context.Context, customerID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldCustomerID, customerID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(" + fieldCustomerID + ")"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("customer %s: %w", customerID, domain.ErrNotFound)
	}
	return err
}

func (r *CustomerRepo) SetDoNotDisturb(ctx context.Context, customerID string) error {
	return r.Update(ctx, customerID, map[string]interface{}{fieldDoNotDisturb: domain.DoNotDisturbYes})
}

// StreamUnverified yields up to limit identifiers on ch whose validation status
// is unknown. Pages are fetched lazily from the status GSI.
func (r *CustomerRepo) StreamUnverified(ctx context.Context, ch domain.Channel, limit int) iter.Seq2[string, error] {
	if limit <= 0 || limit > domain.MaxBatchSize {
		limit = domain.MaxBatchSize
	}
	idAttr := ch.IdentifierAttr()
	return func(yield func(string, error) bool) {
		p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			IndexName:              aws.String(ch.StatusIndex()),
			KeyConditionExpression: aws.String("#s = :unknown"),
			FilterExpression:       aws.String("attribute_exists(#id) AND attribute_type(#id, :str)"),
			ProjectionExpression:   aws.String("#id"),
			ExpressionAttributeNames: map[string]string{
				"#s":  ch.StatusAttr(),
				"#id": idAttr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":unknown": strValue(string(domain.StatusUnknown)),
				":str":     strValue(string(types.ScalarAttributeTypeS)),
			},
			Limit: aws.Int32(int32(limit)),
		})
		n := 0
		for p.HasMorePages() {
			out, err := p.NextPage(ctx)
			if err != nil {
				yield("", err)
				return
			}
			for _, item := range out.Items {
				v, ok := item[idAttr].(*types.AttributeValueMemberS)
				if !ok {
					continue
				}
				if !yield(v.Value, nil) {
					return
				}
				n++
				if n >= limit {
					return
				}
			}
		}
	}
}

type statusUpdate struct {
	customerID string
	status     domain.ValidationStatus
}

// BulkSetValidationStatus sets the channel's validation status on every customer
// matching each result's identifier. Identifiers with no customer are counted as
// unmatched. Writes go out as TransactWriteItems chunks guarded by
// attribute_exists so a concurrently deleted customer is never recreated.
func (r *CustomerRepo) BulkSetValidationStatus(ctx context.Context, ch domain.Channel, results []domain.VerificationResult) (domain.ReconcileReport, error) {
	report := domain.ReconcileReport{Channel: ch, Requested: len(results)}
	if len(results) == 0 {
		return report, nil
	}

	// Later results for the same identifier win.
	latest := make(map[string]domain.ValidationStatus, len(results))
	order := make([]string, 0, len(results))
	for _, res := range results {
		if _, seen := latest[res.Identifier]; !seen {
			order = append(order, res.Identifier)
		}
		latest[res.Identifier] = res.Status
	}

	byCustomer := make(map[string]int)
	var updates []statusUpdate
	for _, ident := range order {
		ids, err := r.customerIDsBy(ctx, ch, ident)
		if err != nil {
			return report, err
		}
		if len(ids) == 0 {
			report.Unmatched++
			continue
		}
		for _, id := range ids {
			if i, ok := byCustomer[id]; ok {
				updates[i].status = latest[ident]
				continue
			}
			byCustomer[id] = len(updates)
			updates = append(updates, statusUpdate{customerID: id, status: latest[ident]})
		}
	}

	for chunk := range slices.Chunk(updates, maxTransactItems) {
		applied, vanished, err := r.writeStatusChunk(ctx, ch, chunk)
		report.Applied += applied
		report.Unmatched += vanished
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

// writeStatusChunk submits one transaction. Updates whose customer disappeared
// after lookup are dropped and the rest resubmitted.
func (r *CustomerRepo) writeStatusChunk(ctx context.Context, ch domain.Channel, chunk []statusUpdate) (applied, vanished int, err error) {
	pending := chunk
	for len(pending) > 0 {
		now := time.Now().UTC().Format(time.RFC3339)
		items := make([]types.TransactWriteItem, len(pending))
		for i, u := range pending {
			items[i] = types.TransactWriteItem{Update: &types.Update{
				TableName:           aws.String(r.tableName),
				Key:                 strKey(fieldCustomerID, u.customerID),
				UpdateExpression:    aws.String("SET #s = :s, #u = :u"),
				ConditionExpression: aws.String("attribute_exists(" + fieldCustomerID + ")"),
				ExpressionAttributeNames: map[string]string{
					"#s": ch.StatusAttr(),
					"#u": fieldUpdatedAt,
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":s": strValue(string(u.status)),
					":u": strValue(now),
				},
			}}
		}
		_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
		if err == nil {
			return applied + len(pending), vanished, nil
		}
		var tce *types.TransactionCanceledException
		if !errors.As(err, &tce) {
			return applied, vanished, err
		}
		// Updates without a matching cancellation reason are kept for resubmission.
		reasons := tce.CancellationReasons
		kept := make([]statusUpdate, 0, len(pending))
		for i, u := range pending {
			if i < len(reasons) && aws.ToString(reasons[i].Code) == codeConditionalCheckFailed {
				vanished++
				continue
			}
			kept = append(kept, u)
		}
		if len(kept) == len(pending) {
			return applied, vanished, err
		}
		pending = kept
	}
	return applied, vanished, nil
}

func (r *CustomerRepo) customerIDsBy(ctx context.Context, ch domain.Channel, identifier string) ([]string, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(ch.IdentifierIndex()),
		KeyConditionExpression:    aws.String("#id = :v"),
		ProjectionExpression:      aws.String(fieldCustomerID),
		ExpressionAttributeNames:  map[string]string{"#id": ch.IdentifierAttr()},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": strValue(identifier)},
	})
	var ids []string
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("lookup %s %q: %w", ch, identifier, err)
		}
		for _, item := range out.Items {
			if v, ok := item[fieldCustomerID].(*types.AttributeValueMemberS); ok {
				ids = append(ids, v.Value)
			}
		}
	}
	return ids, nil
}
