// Package s3 implements provider.ObjectStore for AWS S3 and S3-compatible storage.
package s3

// Config configures an S3 provider.
//
// Credentials come from Config.Credentials. The zero value (nil) and
// AmbientCredentials both defer to the AWS SDK v2 default chain:
//  1. Environment variables (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)
//  2. Shared credentials file (~/.aws/credentials)
//  3. Shared config file (~/.aws/config) with profile
//  4. EC2 instance metadata / ECS task role / EKS IRSA
//
// Region handling:
//   - For AWS S3: if Region is empty and nothing resolves it from the
//     environment or profile, us-east-1 is used.
//   - When Endpoint is set, no default region is applied.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string

	// Region is the AWS region. Empty lets the SDK resolve it.
	Region string

	// Endpoint is a custom endpoint URL for S3-compatible stores
	// (MinIO, moto, Wasabi). Leave empty for AWS S3.
	Endpoint string

	// Profile is the shared config profile name.
	Profile string

	// ForcePathStyle puts the bucket in the URL path instead of the host.
	ForcePathStyle bool

	// Credentials supplies the credentials provider. Nil means ambient.
	Credentials CredentialProvider
}

// DefaultAWSRegion is the fallback region for AWS S3 when not specified.
const DefaultAWSRegion = "us-east-1"

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return &ConfigError{Field: "Bucket", Message: "bucket name is required"}
	}
	if sc, ok := c.Credentials.(StaticCredentials); ok {
		if sc.AccessKeyID == "" || sc.SecretAccessKey == "" {
			return &ConfigError{
				Field:   "Credentials",
				Message: "static credentials need both access key ID and secret access key",
			}
		}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "s3 config: " + e.Field + ": " + e.Message
}
