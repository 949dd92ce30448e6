package validate

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// PlaygroundV10 Validator implementation using go-playground
type PlaygroundV10 struct {
	core *validator.Validate
	uni  *ut.UniversalTranslator
}

var _ Validator = (*PlaygroundV10)(nil)

// NewValidator create a new Validator
func NewValidator() *PlaygroundV10 {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, zh.New())
	enTrans, _ := uni.GetTranslator("en")
	zhTrans, _ := uni.GetTranslator("zh")

	validate := validator.New()
	en_translations.RegisterDefaultTranslations(validate, enTrans)
	zh_translations.RegisterDefaultTranslations(validate, zhTrans)
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			name = fld.Tag.Get("query")
			if name == "-" || name == "" {
				return ""
			}
		}
		return name
	})
	return &PlaygroundV10{
		core: validate,
		uni:  uni,
	}
}

// Struct validate struct, messages in english
func (v *PlaygroundV10) Struct(s interface{}) FieldErrors {
	return v.StructLocale("en", s)
}

// StructLocale validate struct, messages in the first supported locale of an Accept-Language style list
func (v *PlaygroundV10) StructLocale(locale string, s interface{}) FieldErrors {
	err := v.core.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{NewFieldError("", err.Error())}
	}

	trans := v.translator(locale)
	result := make(FieldErrors, 0, len(errs))
	for _, item := range errs {
		result = append(result, NewFieldError(item.Field(), item.Translate(trans)))
	}
	return result
}

// Var validate a single value against tag, varName prefixes the message
func (v *PlaygroundV10) Var(locale, varName string, value interface{}, tag string) FieldErrors {
	err := v.core.Var(value, tag)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return FieldErrors{NewFieldError(varName, err.Error())}
	}

	trans := v.translator(locale)
	result := make(FieldErrors, 0, len(errs))
	for _, item := range errs {
		result = append(result, NewFieldError(varName, strings.TrimSpace(varName+item.Translate(trans))))
	}
	return result
}

// Empty check if value is empty
func (v *PlaygroundV10) Empty(varName string, value interface{}) FieldErrors {
	if err := v.core.Var(value, "required"); err != nil {
		return FieldErrors{NewFieldError(varName, fmt.Sprintf("%s is required", varName))}
	}
	return nil
}

func (v *PlaygroundV10) translator(locale string) ut.Translator {
	trans, _ := v.uni.FindTranslator(parseLocales(locale)...)
	return trans
}

// parseLocales turns "zh-CN,zh;q=0.9,en;q=0.8" into [zh_CN zh en]
func parseLocales(header string) []string {
	var locales []string
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" || tag == "*" {
			continue
		}
		locales = append(locales, strings.ReplaceAll(tag, "-", "_"))
	}
	return locales
}
