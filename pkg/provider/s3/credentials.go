package s3

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// CredentialProvider supplies the credentials an S3 client signs with.
//
// A nil aws.CredentialsProvider from AWSCredentials means "let the SDK
// default chain decide".
type CredentialProvider interface {
	AWSCredentials() aws.CredentialsProvider
}

// AmbientCredentials resolves credentials from the environment the
// process runs in, through the SDK default chain.
type AmbientCredentials struct{}

// AWSCredentials returns nil so the default chain is used.
func (AmbientCredentials) AWSCredentials() aws.CredentialsProvider {
	return nil
}

// StaticCredentials is a fixed key pair. Used by tests and by
// S3-compatible stores that hand out long-lived keys.
type StaticCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// AWSCredentials wraps the key pair in a static SDK provider.
func (c StaticCredentials) AWSCredentials() aws.CredentialsProvider {
	return credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken)
}
