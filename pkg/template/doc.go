// Package template orchestrates one rendering pass: it invokes the script
// executor, manages the capture context, resolves the inheritance chain, and
// merges block registries across that chain into the final string. Template
// instances are created per render request and discarded afterwards; nothing
// here is shared between concurrent renders except the environment
// collaborator's variable store.
package template
