package codec

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mplewis/layerkv"
)

// Document is a DynamoDB item without its key attribute.
type Document = map[string]types.AttributeValue

// AttributesCodec stores values of type T as DynamoDB documents, one
// attribute per field (see attributevalue for the struct tag rules).
type AttributesCodec[T any] struct{}

// Attributes returns a document codec for T.
func Attributes[T any]() AttributesCodec[T] { return AttributesCodec[T]{} }

func (AttributesCodec[T]) EncodeValue(obj T) (Document, error) {
	doc, err := attributevalue.MarshalMap(obj)
	if err != nil {
		return nil, encodeErr("dynamodb attributes", err)
	}
	return doc, nil
}

func (AttributesCodec[T]) DecodeValue(doc Document) (T, error) {
	var obj T
	if err := attributevalue.UnmarshalMap(doc, &obj); err != nil {
		return obj, decodeErr("dynamodb attributes", err)
	}
	return obj, nil
}

// BlobCodec stores raw bytes in a single binary attribute.
type BlobCodec struct {
	attr string
}

// Blob returns a codec keeping []byte data in the binary attribute attr.
func Blob(attr string) BlobCodec {
	return BlobCodec{attr: attr}
}

func (b BlobCodec) EncodeValue(data []byte) (Document, error) {
	return Document{b.attr: &types.AttributeValueMemberB{Value: data}}, nil
}

func (b BlobCodec) DecodeValue(doc Document) ([]byte, error) {
	av, ok := doc[b.attr]
	if !ok {
		return nil, fmt.Errorf("%w: missing attribute %q", layerkv.ErrDeserialization, b.attr)
	}
	bin, ok := av.(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("%w: attribute %q is %T, not binary", layerkv.ErrDeserialization, b.attr, av)
	}
	return bin.Value, nil
}
