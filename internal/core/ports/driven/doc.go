// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Connector: crawls a source tree and emits raw documents
//   - Normaliser: extracts text from one document format
//   - NormaliserRegistry: selects the appropriate normaliser
//   - PostProcessorPipeline: splits documents into chunks
//   - EmbeddingService: generates vector embeddings
//   - IndexStore: persistent index (content, vectors, manifest)
//   - LLMService: text generation for composed prompts
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
