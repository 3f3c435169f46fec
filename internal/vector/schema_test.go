package vector

import (
	"context"
	"testing"

	"github.com/weaviate/weaviate/entities/models"
)

type MockSchemaClient struct {
	CreatedClass    *models.Class
	ExistingClass   *models.Class
	AddedProperties []*models.Property
}

func (m *MockSchemaClient) ClassExists(ctx context.Context, className string) (bool, error) {
	return m.ExistingClass != nil, nil
}

func (m *MockSchemaClient) CreateClass(ctx context.Context, class *models.Class) error {
	m.CreatedClass = class
	return nil
}

func (m *MockSchemaClient) GetClass(ctx context.Context, className string) (*models.Class, error) {
	return m.ExistingClass, nil
}

func (m *MockSchemaClient) AddProperty(ctx context.Context, className string, property *models.Property) error {
	m.AddedProperties = append(m.AddedProperties, property)
	return nil
}

func TestEnsureSchema_CreatesClass(t *testing.T) {
	client := &MockSchemaClient{}
	if err := EnsureSchema(context.Background(), client); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	if client.CreatedClass == nil {
		t.Fatal("Class not created")
	}
	if client.CreatedClass.Class != "DocumentChunk" {
		t.Errorf("Wrong class name: %s", client.CreatedClass.Class)
	}
	if client.CreatedClass.Vectorizer != "none" {
		t.Errorf("Vectorizer should be none, got %s", client.CreatedClass.Vectorizer)
	}

	expectedProps := map[string]string{
		"content":    "text",
		"documentId": "string",
		"filename":   "string",
		"pageNumber": "int",
		"chunkIndex": "int",
	}

	seen := make(map[string]bool)
	for _, prop := range client.CreatedClass.Properties {
		seen[prop.Name] = true
		if expectedType, ok := expectedProps[prop.Name]; ok {
			if len(prop.DataType) == 0 || prop.DataType[0] != expectedType {
				t.Errorf("Property %s has wrong DataType: %v (expected %s)", prop.Name, prop.DataType, expectedType)
			}
		}
	}
	for name := range expectedProps {
		if !seen[name] {
			t.Errorf("Missing %q property", name)
		}
	}
}

func TestEnsureSchema_AddsMissingProperties(t *testing.T) {
	// Simulate a class created before page tracking existed.
	existingClass := &models.Class{
		Class: "DocumentChunk",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "documentId", DataType: []string{"string"}},
			{Name: "filename", DataType: []string{"string"}},
		},
	}

	client := &MockSchemaClient{
		ExistingClass: existingClass,
	}

	if err := EnsureSchema(context.Background(), client); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}

	if client.CreatedClass != nil {
		t.Fatal("Should not recreate class if it exists")
	}

	addedNames := make(map[string]bool)
	for _, p := range client.AddedProperties {
		addedNames[p.Name] = true
	}

	if !addedNames["pageNumber"] {
		t.Error("Missing 'pageNumber' property")
	}
	if !addedNames["chunkIndex"] {
		t.Error("Missing 'chunkIndex' property")
	}
	if addedNames["content"] {
		t.Error("Should not re-add existing 'content' property")
	}
}

func TestEnsureSchema_NoopWhenComplete(t *testing.T) {
	existingClass := &models.Class{
		Class: "DocumentChunk",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "documentId", DataType: []string{"string"}},
			{Name: "filename", DataType: []string{"string"}},
			{Name: "pageNumber", DataType: []string{"int"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
		},
	}

	client := &MockSchemaClient{
		ExistingClass: existingClass,
	}

	if err := EnsureSchema(context.Background(), client); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	if len(client.AddedProperties) != 0 {
		t.Errorf("Expected no property additions, got %d", len(client.AddedProperties))
	}
}
