package realization

import (
	"fmt"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/descriptor"
)

// DshService is a processor deployed as a platform service from a container image
type DshService struct {
	processorBase
	Image string
}

// NewDshService creates a DshService realization. The image may contain tenant placeholders.
func NewDshService(template descriptor.ProcessorDescriptor, image string) (*DshService, error) {
	base, err := newProcessorBase(template, descriptor.DshService)
	if err != nil {
		return nil, err
	}
	if image == "" {
		return nil, fmt.Errorf("dsh service '%s' has no image", template.RealizationID)
	}
	return &DshService{processorBase: base, Image: image}, nil
}

// Descriptor implements ProcessorRealization
func (s *DshService) Descriptor(tenant descriptor.Tenant) descriptor.ProcessorDescriptor {
	return s.render(tenant, map[string]string{"image": s.Image})
}

// DshApp is a processor deployed from the platform's app catalog
type DshApp struct {
	processorBase
	AppID      string
	AppVersion string
}

// NewDshApp creates a DshApp realization
func NewDshApp(template descriptor.ProcessorDescriptor, appID, appVersion string) (*DshApp, error) {
	base, err := newProcessorBase(template, descriptor.DshApp)
	if err != nil {
		return nil, err
	}
	if appID == "" {
		return nil, fmt.Errorf("dsh app '%s' has no app catalog id", template.RealizationID)
	}
	return &DshApp{processorBase: base, AppID: appID, AppVersion: appVersion}, nil
}

// Descriptor implements ProcessorRealization
func (a *DshApp) Descriptor(tenant descriptor.Tenant) descriptor.ProcessorDescriptor {
	extra := map[string]string{"app-id": a.AppID}
	if a.AppVersion != "" {
		extra["app-version"] = a.AppVersion
	}
	return a.render(tenant, extra)
}

// Application is a processor managed outside the app catalog
type Application struct {
	processorBase
}

// NewApplication creates an Application realization
func NewApplication(template descriptor.ProcessorDescriptor) (*Application, error) {
	base, err := newProcessorBase(template, descriptor.Application)
	if err != nil {
		return nil, err
	}
	return &Application{processorBase: base}, nil
}

// Descriptor implements ProcessorRealization
func (a *Application) Descriptor(tenant descriptor.Tenant) descriptor.ProcessorDescriptor {
	return a.render(tenant, nil)
}
