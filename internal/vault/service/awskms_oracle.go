package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// KMSClient is the subset of the AWS KMS API the oracle uses.
type KMSClient interface {
	Encrypt(ctx context.Context, params *kms.EncryptInput, optFns ...func(*kms.Options)) (*kms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// KMSOracle implements KeyOracle on AWS KMS. The encryption context is passed
// straight through to KMS, which binds it cryptographically to the ciphertext
// and records it in CloudTrail.
type KMSOracle struct {
	client KMSClient
	keyID  string
}

// NewKMSOracle creates a KMS-backed oracle using the given key id or ARN.
func NewKMSOracle(client KMSClient, keyID string) *KMSOracle {
	return &KMSOracle{client: client, keyID: keyID}
}

// Encrypt encrypts plaintext under the configured key, bound to the context.
func (o *KMSOracle) Encrypt(
	ctx context.Context, plaintext []byte, encryptionContext map[string]string,
) (string, error) {
	out, err := o.client.Encrypt(ctx, &kms.EncryptInput{
		KeyId:             aws.String(o.keyID),
		Plaintext:         plaintext,
		EncryptionContext: encryptionContext,
	})
	if err != nil {
		return "", fmt.Errorf("kms encrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(out.CiphertextBlob), nil
}

// Decrypt decrypts a ciphertext under the given context. KMS rejects the call
// when the context does not match the one bound at encrypt time.
func (o *KMSOracle) Decrypt(
	ctx context.Context, ciphertext string, encryptionContext map[string]string,
) ([]byte, error) {
	blob, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	out, err := o.client.Decrypt(ctx, &kms.DecryptInput{
		KeyId:             aws.String(o.keyID),
		CiphertextBlob:    blob,
		EncryptionContext: encryptionContext,
	})
	if err != nil {
		return nil, fmt.Errorf("kms decrypt: %w", err)
	}
	return out.Plaintext, nil
}
