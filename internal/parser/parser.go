package parser

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/objgen/internal/errors"
	"github.com/mcncl/objgen/internal/models"
)

// Parse converts JSON data from an io.Reader into an IntermediateRepresentation.
// Numbers are kept as json.Number so the literal formatter sees the original text.
func Parse(reader io.Reader) (models.IntermediateRepresentation, error) {
	decoder := json.NewDecoder(reader)
	decoder.UseNumber()

	var rootValue models.JSONValue
	if err := decoder.Decode(&rootValue); err != nil {
		if stderrors.Is(err, io.EOF) {
			return models.IntermediateRepresentation{}, errors.NewParsingError("input is empty or contains only whitespace", errors.ErrEmptyInput)
		}
		return models.IntermediateRepresentation{}, decodeError(err)
	}

	// Anything but EOF after the first value is trailing data.
	if tok, err := decoder.Token(); err == nil {
		return models.IntermediateRepresentation{}, errors.NewParsingError(
			fmt.Sprintf("unexpected %v after the root JSON value", tok),
			errors.ErrMultipleJSON,
		)
	} else if !stderrors.Is(err, io.EOF) {
		return models.IntermediateRepresentation{}, errors.NewParsingError("invalid trailing data after first JSON value", decodeError(err))
	}

	rootValue = normalizeJSONValue(rootValue)
	ir := models.IntermediateRepresentation{Root: rootValue}
	if _, ok := rootValue.(models.JSONArray); ok {
		ir.RootIsArray = true
	}
	return ir, nil
}

func decodeError(err error) error {
	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntaxError):
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxError.Offset, syntaxError.Error()),
			errors.ErrInvalidJSON,
		)
	case stderrors.As(err, &unmarshalTypeError):
		return errors.NewParsingError(
			fmt.Sprintf("JSON type error at offset %d for type %s", unmarshalTypeError.Offset, unmarshalTypeError.Type),
			errors.ErrInvalidJSON,
		)
	case stderrors.Is(err, io.ErrUnexpectedEOF):
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	default:
		return errors.NewParsingError("failed to decode JSON", err)
	}
}

// normalizeJSONValue converts raw JSON types into our model types
func normalizeJSONValue(val models.JSONValue) models.JSONValue {
	switch v := val.(type) {
	case map[string]interface{}:
		obj := make(models.JSONObject, len(v))
		for key, value := range v {
			obj[key] = normalizeJSONValue(value)
		}
		return obj
	case []interface{}:
		arr := make(models.JSONArray, len(v))
		for i, value := range v {
			arr[i] = normalizeJSONValue(value)
		}
		return arr
	default:
		return v // string, json.Number, bool, nil
	}
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.IntermediateRepresentation{}, errors.NewParsingError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return Parse(strings.NewReader(jsonString))
}

// ParseFile parses JSON from a file path. A file holding only whitespace is
// reported as empty.
func ParseFile(filePath string) (models.IntermediateRepresentation, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.IntermediateRepresentation{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.IntermediateRepresentation{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	ir, err := Parse(file)
	if stderrors.Is(err, errors.ErrEmptyInput) {
		return models.IntermediateRepresentation{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return ir, err
}
