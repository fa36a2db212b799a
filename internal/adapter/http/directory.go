package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/societyq/societyq/internal/app"
	"github.com/societyq/societyq/internal/domain"
)

// SocietyResponse is the API representation of a society.
type SocietyResponse struct {
	ID        string `json:"id" doc:"Unique identifier"`
	Name      string `json:"name" doc:"Society name"`
	Address   string `json:"address" doc:"Street address"`
	City      string `json:"city" doc:"City"`
	Pincode   string `json:"pincode" doc:"Postal code"`
	CreatedAt string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toSocietyResponse(s domain.Society) SocietyResponse {
	return SocietyResponse{
		ID:        s.ID,
		Name:      s.Name,
		Address:   s.Address,
		City:      s.City,
		Pincode:   s.Pincode,
		CreatedAt: formatTime(s.CreatedAt),
	}
}

// BuildingResponse is the API representation of a building.
type BuildingResponse struct {
	ID          string `json:"id" doc:"Unique identifier"`
	Name        string `json:"name" doc:"Building name"`
	TotalFloors int    `json:"total_floors" doc:"Number of floors"`
	SocietyID   string `json:"society_id" doc:"Owning society"`
	CreatedAt   string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toBuildingResponse(b domain.Building) BuildingResponse {
	return BuildingResponse{
		ID:          b.ID,
		Name:        b.Name,
		TotalFloors: b.TotalFloors,
		SocietyID:   b.SocietyID,
		CreatedAt:   formatTime(b.CreatedAt),
	}
}

// FlatResponse is the API representation of a flat.
type FlatResponse struct {
	ID             string  `json:"id" doc:"Unique identifier"`
	Number         string  `json:"number" doc:"Flat number, unique within the building"`
	Floor          int     `json:"floor" doc:"Floor the flat is on"`
	Area           float64 `json:"area" doc:"Carpet area in square feet"`
	BuildingID     string  `json:"building_id" doc:"Owning building"`
	SocietyID      string  `json:"society_id" doc:"Owning society"`
	OccupiedStatus string  `json:"occupied_status" doc:"VACANT or OCCUPIED"`
	CreatedAt      string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
}

func toFlatResponse(f domain.Flat) FlatResponse {
	return FlatResponse{
		ID:             f.ID,
		Number:         f.Number,
		Floor:          f.Floor,
		Area:           f.Area,
		BuildingID:     f.BuildingID,
		SocietyID:      f.SocietyID,
		OccupiedStatus: string(f.OccupiedStatus),
		CreatedAt:      formatTime(f.CreatedAt),
	}
}

// --- Societies ---

type CreateSocietyInput struct {
	Body struct {
		Name    string `json:"name" minLength:"1" maxLength:"255" doc:"Society name"`
		Address string `json:"address" minLength:"1" doc:"Street address"`
		City    string `json:"city" minLength:"1" doc:"City"`
		Pincode string `json:"pincode" minLength:"1" doc:"Postal code"`
	}
}

type CreateSocietyOutput struct {
	Body SocietyResponse
}

type GetSocietyInput struct {
	ID string `path:"id" doc:"Society ID"`
}

type GetSocietyOutput struct {
	Body SocietyResponse
}

type ListSocietiesInput struct{}

type ListSocietiesOutput struct {
	Body []SocietyResponse
}

// --- Buildings ---

type CreateBuildingInput struct {
	Body struct {
		SocietyID   string `json:"society_id" minLength:"1" doc:"Owning society"`
		Name        string `json:"name" minLength:"1" maxLength:"255" doc:"Building name"`
		TotalFloors int    `json:"total_floors" minimum:"1" doc:"Number of floors"`
	}
}

type CreateBuildingOutput struct {
	Body BuildingResponse
}

type ListBuildingsInput struct {
	ID string `path:"id" doc:"Society ID"`
}

type ListBuildingsOutput struct {
	Body []BuildingResponse
}

// --- Flats ---

type CreateFlatInput struct {
	Body struct {
		BuildingID string  `json:"building_id" minLength:"1" doc:"Owning building"`
		Number     string  `json:"number" minLength:"1" doc:"Flat number, unique within the building"`
		Floor      int     `json:"floor" minimum:"0" doc:"Floor the flat is on"`
		Area       float64 `json:"area" minimum:"1" doc:"Carpet area in square feet"`
	}
}

type CreateFlatOutput struct {
	Body FlatResponse
}

type GetFlatInput struct {
	ID string `path:"id" doc:"Flat ID"`
}

type GetFlatOutput struct {
	Body FlatResponse
}

type ListFlatsByBuildingInput struct {
	ID string `path:"id" doc:"Building ID"`
}

type ListFlatsBySocietyInput struct {
	ID string `path:"id" doc:"Society ID"`
}

type ListFlatsOutput struct {
	Body []FlatResponse
}

func registerDirectory(api huma.API, svc *app.DirectoryService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-society",
		Method:      http.MethodPost,
		Path:        "/api/v1/societies",
		Summary:     "Register a new society",
		Tags:        []string{"Directory"},
	}, func(ctx context.Context, input *CreateSocietyInput) (*CreateSocietyOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		society, err := svc.CreateSociety(ctx, actor, app.NewSocietyInput{
			Name:    input.Body.Name,
			Address: input.Body.Address,
			City:    input.Body.City,
			Pincode: input.Body.Pincode,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateSocietyOutput{Body: toSocietyResponse(society)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-society",
		Method:      http.MethodGet,
		Path:        "/api/v1/societies/{id}",
		Summary:     "Get a society by ID",
		Tags:        []string{"Directory"},
	}, func(ctx context.Context, input *GetSocietyInput) (*GetSocietyOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		society, err := svc.GetSociety(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetSocietyOutput{Body: toSocietyResponse(society)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-societies",
		Method:      http.MethodGet,
		Path:        "/api/v1/societies",
		Summary:     "List all societies",
		Tags:        []string{"Directory"},
	}, func(ctx context.Context, _ *ListSocietiesInput) (*ListSocietiesOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		societies, err := svc.ListSocieties(ctx, actor)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]SocietyResponse, len(societies))
		for i, s := range societies {
			resp[i] = toSocietyResponse(s)
		}
		return &ListSocietiesOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-building",
		Method:      http.MethodPost,
		Path:        "/api/v1/buildings",
		Summary:     "Add a building to a society",
		Tags:        []string{"Directory"},
	}, func(ctx context.Context, input *CreateBuildingInput) (*CreateBuildingOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		building, err := svc.CreateBuilding(ctx, actor, app.NewBuildingInput{
			SocietyID:   input.Body.SocietyID,
			Name:        input.Body.Name,
			TotalFloors: input.Body.TotalFloors,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateBuildingOutput{Body: toBuildingResponse(building)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-buildings",
		Method:      http.MethodGet,
		Path:        "/api/v1/societies/{id}/buildings",
		Summary:     "List a society's buildings",
		Tags:        []string{"Directory"},
	}, func(ctx context.Context, input *ListBuildingsInput) (*ListBuildingsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		buildings, err := svc.ListBuildings(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]BuildingResponse, len(buildings))
		for i, b := range buildings {
			resp[i] = toBuildingResponse(b)
		}
		return &ListBuildingsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "create-flat",
		Method:      http.MethodPost,
		Path:        "/api/v1/flats",
		Summary:     "Add a flat to a building",
		Tags:        []string{"Directory"},
	}, func(ctx context.Context, input *CreateFlatInput) (*CreateFlatOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		flat, err := svc.CreateFlat(ctx, actor, app.NewFlatInput{
			BuildingID: input.Body.BuildingID,
			Number:     input.Body.Number,
			Floor:      input.Body.Floor,
			Area:       input.Body.Area,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CreateFlatOutput{Body: toFlatResponse(flat)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-flat",
		Method:      http.MethodGet,
		Path:        "/api/v1/flats/{id}",
		Summary:     "Get a flat by ID",
		Tags:        []string{"Directory"},
	}, func(ctx context.Context, input *GetFlatInput) (*GetFlatOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		flat, err := svc.GetFlat(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &GetFlatOutput{Body: toFlatResponse(flat)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-flats-by-building",
		Method:      http.MethodGet,
		Path:        "/api/v1/buildings/{id}/flats",
		Summary:     "List a building's flats",
		Tags:        []string{"Directory"},
	}, func(ctx context.Context, input *ListFlatsByBuildingInput) (*ListFlatsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		flats, err := svc.ListFlatsByBuilding(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]FlatResponse, len(flats))
		for i, f := range flats {
			resp[i] = toFlatResponse(f)
		}
		return &ListFlatsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-flats-by-society",
		Method:      http.MethodGet,
		Path:        "/api/v1/societies/{id}/flats",
		Summary:     "List a society's flats",
		Tags:        []string{"Directory"},
	}, func(ctx context.Context, input *ListFlatsBySocietyInput) (*ListFlatsOutput, error) {
		actor, err := actorFrom(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		flats, err := svc.ListFlatsBySociety(ctx, actor, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]FlatResponse, len(flats))
		for i, f := range flats {
			resp[i] = toFlatResponse(f)
		}
		return &ListFlatsOutput{Body: resp}, nil
	})
}
