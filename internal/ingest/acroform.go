package ingest

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/a3tai/formengine/internal/convert"
	hmodel "github.com/a3tai/formengine/internal/model"
)

// acroFormFields walks the PDF's AcroForm dictionary and returns one
// seeded field per entry
func (s *Seeder) acroFormFields(reader io.ReadSeeker) ([]SeededField, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(reader, conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return s.fieldsFromContext(ctx)
}

func (s *Seeder) acroFormFieldsFromFile(path string) ([]SeededField, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()
	return s.acroFormFields(file)
}

func (s *Seeder) fieldsFromContext(ctx *model.Context) ([]SeededField, error) {
	var fields []SeededField

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return fields, nil
	}
	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return fields, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return fields, nil
	}
	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	for i, fieldRef := range fieldsArray {
		field, err := s.processField(ctx, fieldRef, i)
		if err != nil {
			if s.debugMode {
				fmt.Printf("Error processing field %d: %v\n", i, err)
			}
			continue
		}
		if field != nil {
			fields = append(fields, *field)
		}
	}

	return fields, nil
}

func (s *Seeder) processField(ctx *model.Context, fieldObj types.Object, index int) (*SeededField, error) {
	fieldDict, err := ctx.DereferenceDict(fieldObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference field: %w", err)
	}
	if fieldDict == nil {
		return nil, nil
	}

	field := &SeededField{}

	if nameObj, found := fieldDict.Find("T"); found {
		if name, err := ctx.DereferenceStringOrHexLiteral(nameObj, model.V10, nil); err == nil {
			field.Name = name
		}
	}
	if field.Name == "" {
		field.Name = fmt.Sprintf("field_%d", index+1)
	}
	field.Key = convert.Slug(field.Name)

	field.Type = s.fieldType(ctx, fieldDict)

	if valueObj, found := fieldDict.Find("V"); found {
		field.Value = s.fieldValue(ctx, valueObj, field.Type)
	}

	if flagsObj, found := fieldDict.Find("Ff"); found {
		if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
			field.Required = (*flags & 2) != 0 // Bit 2
		}
	}

	if field.Type == hmodel.FieldTypeSelect || field.Type == hmodel.FieldTypeRadio {
		field.Options = s.fieldOptions(ctx, fieldDict)
	}

	field.BBox = s.fieldBBox(ctx, fieldDict)

	if s.debugMode {
		fmt.Printf("Seeded field: %s (type: %s)\n", field.Name, field.Type)
	}

	return field, nil
}

// fieldType maps the AcroForm FT entry onto the engine's field types,
// checking the parent dictionary for inherited types
func (s *Seeder) fieldType(ctx *model.Context, fieldDict types.Dict) hmodel.FieldType {
	ftObj, found := fieldDict.Find("FT")
	if !found {
		if parentObj, found := fieldDict.Find("Parent"); found {
			if parentDict, err := ctx.DereferenceDict(parentObj); err == nil && parentDict != nil {
				return s.fieldType(ctx, parentDict)
			}
		}
		return hmodel.FieldTypeText
	}

	ftName, err := ctx.DereferenceName(ftObj, model.V10, nil)
	if err != nil {
		return hmodel.FieldTypeText
	}

	switch ftName {
	case "Btn":
		if flagsObj, found := fieldDict.Find("Ff"); found {
			if flags, err := ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				if (*flags & (1 << 15)) != 0 { // Bit 16: Radio
					return hmodel.FieldTypeRadio
				}
			}
		}
		return hmodel.FieldTypeCheckbox
	case "Tx":
		return hmodel.FieldTypeText
	case "Ch":
		return hmodel.FieldTypeSelect
	case "Sig":
		return hmodel.FieldTypeSignature
	default:
		return hmodel.FieldTypeText
	}
}

func (s *Seeder) fieldValue(ctx *model.Context, valueObj types.Object, fieldType hmodel.FieldType) any {
	switch fieldType {
	case hmodel.FieldTypeCheckbox:
		if name, err := ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
			return name == "Yes" || name == "On"
		}
	case hmodel.FieldTypeRadio:
		if name, err := ctx.DereferenceName(valueObj, model.V10, nil); err == nil {
			return name
		}
	case hmodel.FieldTypeSelect:
		if val, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			return val
		}
		if arr, err := ctx.DereferenceArray(valueObj); err == nil {
			var values []string
			for _, item := range arr {
				if str, err := ctx.DereferenceStringOrHexLiteral(item, model.V10, nil); err == nil {
					values = append(values, str)
				}
			}
			return values
		}
	default:
		if val, err := ctx.DereferenceStringOrHexLiteral(valueObj, model.V10, nil); err == nil {
			return val
		}
	}
	return nil
}

func (s *Seeder) fieldOptions(ctx *model.Context, fieldDict types.Dict) []string {
	var options []string

	optObj, found := fieldDict.Find("Opt")
	if !found {
		return options
	}
	optArray, err := ctx.DereferenceArray(optObj)
	if err != nil {
		return options
	}

	for _, opt := range optArray {
		// Options are strings or [export_value, display_value] pairs
		if str, err := ctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			options = append(options, str)
		} else if arr, err := ctx.DereferenceArray(opt); err == nil && len(arr) >= 2 {
			if displayVal, err := ctx.DereferenceStringOrHexLiteral(arr[1], model.V10, nil); err == nil {
				options = append(options, displayVal)
			}
		}
	}

	return options
}

// fieldBBox extracts [x0,y0,x1,y1] from the field's widget annotation
func (s *Seeder) fieldBBox(ctx *model.Context, fieldDict types.Dict) []float64 {
	if rectObj, found := fieldDict.Find("Rect"); found {
		if bbox := s.parseRect(ctx, rectObj); bbox != nil {
			return bbox
		}
	}
	if kidsObj, found := fieldDict.Find("Kids"); found {
		if kidsArray, err := ctx.DereferenceArray(kidsObj); err == nil && len(kidsArray) > 0 {
			if widgetDict, err := ctx.DereferenceDict(kidsArray[0]); err == nil && widgetDict != nil {
				if rectObj, found := widgetDict.Find("Rect"); found {
					return s.parseRect(ctx, rectObj)
				}
			}
		}
	}
	return nil
}

func (s *Seeder) parseRect(ctx *model.Context, rectObj types.Object) []float64 {
	rectArray, err := ctx.DereferenceArray(rectObj)
	if err != nil || len(rectArray) != 4 {
		return nil
	}
	coords := make([]float64, 4)
	for i, coord := range rectArray {
		if f, err := ctx.DereferenceNumber(coord); err == nil {
			coords[i] = f
		}
	}
	return coords
}
