// Package bedrock provides an llm.Backend for Anthropic models served by AWS Bedrock.
//
// Messages are sent with InvokeModel using the Bedrock Claude body
// (anthropic_version "bedrock-2023-05-31"), and streamed with
// InvokeModelWithResponseStream, whose chunks carry the same events as the
// Anthropic API. Legacy text completions use the Claude v2 prompt body. Models
// are listed with ListFoundationModels filtered to the Anthropic provider.
// Message batches are not available through the Bedrock runtime and report an
// unsupported_operation error.
//
// Usage:
//
//	client, err := bedrock.NewClient(llm.ClientConfig{
//	    Provider: "bedrock",
//	    Model:    "anthropic.claude-3-sonnet-20240229-v1:0",
//	    Extra: map[string]string{
//	        "region": "us-east-1",
//	    },
//	})
//
// The client uses the AWS SDK's default credential chain unless the Extra
// keys aws_access_key_id and aws_secret_access_key are set. ClientConfig.APIKey
// is not used for authentication. It is only the credential label the mock
// wrapper classifies, so a key like "TEST_bedrock" puts a wrapped Bedrock
// backend in test mode.
package bedrock
