package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type ListSettingsOutput struct {
	Body map[string]string
}

type PutSettingInput struct {
	Key  string `path:"key" minLength:"1" maxLength:"100" doc:"Setting key"`
	Body struct {
		Value       string `json:"value" doc:"Setting value"`
		Description string `json:"description,omitempty" maxLength:"500" doc:"Description, kept when omitted"`
	}
}

type SettingOutput struct {
	Body struct {
		Key   string `json:"setting_key"`
		Value string `json:"setting_value"`
	}
}

func RegisterSettingRoutes(api huma.API, svc BillingService) {
	huma.Register(api, huma.Operation{
		OperationID: "list-settings",
		Method:      http.MethodGet,
		Path:        "/settings",
		Summary:     "List system settings",
		Tags:        []string{"Settings"},
	}, func(ctx context.Context, _ *struct{}) (*ListSettingsOutput, error) {
		all, err := svc.Settings(ctx)
		if err != nil {
			return nil, toHTTPError(err, "failed to list settings")
		}

		return &ListSettingsOutput{Body: all}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "put-setting",
		Method:      http.MethodPut,
		Path:        "/settings/{key}",
		Summary:     "Create or update a setting",
		Tags:        []string{"Settings"},
	}, func(ctx context.Context, input *PutSettingInput) (*SettingOutput, error) {
		if err := svc.SetSetting(ctx, input.Key, input.Body.Value, input.Body.Description); err != nil {
			return nil, toHTTPError(err, "failed to update setting")
		}

		value, err := svc.Setting(ctx, input.Key)
		if err != nil {
			return nil, toHTTPError(err, "failed to read setting")
		}

		out := &SettingOutput{}
		out.Body.Key = input.Key
		out.Body.Value = value
		return out, nil
	})
}
