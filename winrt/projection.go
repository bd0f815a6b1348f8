package winrt

import "sort"

// Projection maps a Windows Runtime type onto the .NET type that replaces it
// and the virtual assembly reference the projected type lives in.
type Projection struct {
	WinRTNamespace string
	WinRTName      string
	Namespace      string
	Name           string
	Assembly       VirtualIndex
}

type typeKey struct{ ns, name string }

var projections = []Projection{
	{"Windows.Foundation.Metadata", "AttributeUsageAttribute", "System", "AttributeUsageAttribute", SystemRuntime},
	{"Windows.Foundation.Metadata", "AttributeTargets", "System", "AttributeTargets", SystemRuntime},
	{"Windows.UI", "Color", "Windows.UI", "Color", SystemRuntimeWindowsRuntime},
	{"Windows.Foundation", "DateTime", "System", "DateTimeOffset", SystemRuntime},
	{"Windows.Foundation", "EventHandler`1", "System", "EventHandler`1", SystemRuntime},
	{"Windows.Foundation", "EventRegistrationToken", "System.Runtime.InteropServices.WindowsRuntime", "EventRegistrationToken", SystemRuntimeInteropServicesWindowsRuntime},
	{"Windows.Foundation", "HResult", "System", "Exception", SystemRuntime},
	{"Windows.Foundation", "IReference`1", "System", "Nullable`1", SystemRuntime},
	{"Windows.Foundation", "Point", "Windows.Foundation", "Point", SystemRuntimeWindowsRuntime},
	{"Windows.Foundation", "Rect", "Windows.Foundation", "Rect", SystemRuntimeWindowsRuntime},
	{"Windows.Foundation", "Size", "Windows.Foundation", "Size", SystemRuntimeWindowsRuntime},
	{"Windows.Foundation", "TimeSpan", "System", "TimeSpan", SystemRuntime},
	{"Windows.Foundation", "Uri", "System", "Uri", SystemRuntime},
	{"Windows.Foundation", "IClosable", "System", "IDisposable", SystemRuntime},
	{"Windows.Foundation.Collections", "IIterable`1", "System.Collections.Generic", "IEnumerable`1", SystemRuntime},
	{"Windows.Foundation.Collections", "IVector`1", "System.Collections.Generic", "IList`1", SystemRuntime},
	{"Windows.Foundation.Collections", "IVectorView`1", "System.Collections.Generic", "IReadOnlyList`1", SystemRuntime},
	{"Windows.Foundation.Collections", "IMap`2", "System.Collections.Generic", "IDictionary`2", SystemRuntime},
	{"Windows.Foundation.Collections", "IMapView`2", "System.Collections.Generic", "IReadOnlyDictionary`2", SystemRuntime},
	{"Windows.Foundation.Collections", "IKeyValuePair`2", "System.Collections.Generic", "KeyValuePair`2", SystemRuntime},
	{"Windows.UI.Xaml.Input", "ICommand", "System.Windows.Input", "ICommand", SystemObjectModel},
	{"Windows.UI.Xaml.Interop", "IBindableIterable", "System.Collections", "IEnumerable", SystemRuntime},
	{"Windows.UI.Xaml.Interop", "IBindableVector", "System.Collections", "IList", SystemRuntime},
	{"Windows.UI.Xaml.Interop", "INotifyCollectionChanged", "System.Collections.Specialized", "INotifyCollectionChanged", SystemObjectModel},
	{"Windows.UI.Xaml.Interop", "NotifyCollectionChangedEventHandler", "System.Collections.Specialized", "NotifyCollectionChangedEventHandler", SystemObjectModel},
	{"Windows.UI.Xaml.Interop", "NotifyCollectionChangedEventArgs", "System.Collections.Specialized", "NotifyCollectionChangedEventArgs", SystemObjectModel},
	{"Windows.UI.Xaml.Interop", "NotifyCollectionChangedAction", "System.Collections.Specialized", "NotifyCollectionChangedAction", SystemObjectModel},
	{"Windows.UI.Xaml.Data", "INotifyPropertyChanged", "System.ComponentModel", "INotifyPropertyChanged", SystemObjectModel},
	{"Windows.UI.Xaml.Data", "PropertyChangedEventHandler", "System.ComponentModel", "PropertyChangedEventHandler", SystemObjectModel},
	{"Windows.UI.Xaml.Data", "PropertyChangedEventArgs", "System.ComponentModel", "PropertyChangedEventArgs", SystemObjectModel},
	{"Windows.UI.Xaml", "CornerRadius", "Windows.UI.Xaml", "CornerRadius", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.UI.Xaml", "Duration", "Windows.UI.Xaml", "Duration", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.UI.Xaml", "DurationType", "Windows.UI.Xaml", "DurationType", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.UI.Xaml", "GridLength", "Windows.UI.Xaml", "GridLength", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.UI.Xaml", "GridUnitType", "Windows.UI.Xaml", "GridUnitType", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.UI.Xaml", "Thickness", "Windows.UI.Xaml", "Thickness", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.UI.Xaml.Interop", "TypeName", "System", "Type", SystemRuntime},
	{"Windows.UI.Xaml.Controls.Primitives", "GeneratorPosition", "Windows.UI.Xaml.Controls.Primitives", "GeneratorPosition", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.UI.Xaml.Media", "Matrix", "Windows.UI.Xaml.Media", "Matrix", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.UI.Xaml.Media.Animation", "KeyTime", "Windows.UI.Xaml.Media.Animation", "KeyTime", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.UI.Xaml.Media.Animation", "RepeatBehavior", "Windows.UI.Xaml.Media.Animation", "RepeatBehavior", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.UI.Xaml.Media.Animation", "RepeatBehaviorType", "Windows.UI.Xaml.Media.Animation", "RepeatBehaviorType", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.UI.Xaml.Media.Media3D", "Matrix3D", "Windows.UI.Xaml.Media.Media3D", "Matrix3D", SystemRuntimeWindowsRuntimeUIXaml},
	{"Windows.Foundation.Numerics", "Matrix3x2", "System.Numerics", "Matrix3x2", SystemNumericsVectors},
	{"Windows.Foundation.Numerics", "Matrix4x4", "System.Numerics", "Matrix4x4", SystemNumericsVectors},
	{"Windows.Foundation.Numerics", "Plane", "System.Numerics", "Plane", SystemNumericsVectors},
	{"Windows.Foundation.Numerics", "Quaternion", "System.Numerics", "Quaternion", SystemNumericsVectors},
	{"Windows.Foundation.Numerics", "Vector2", "System.Numerics", "Vector2", SystemNumericsVectors},
	{"Windows.Foundation.Numerics", "Vector3", "System.Numerics", "Vector3", SystemNumericsVectors},
	{"Windows.Foundation.Numerics", "Vector4", "System.Numerics", "Vector4", SystemNumericsVectors},
}

var projectionIndex = func() map[typeKey]int {
	m := make(map[typeKey]int, len(projections))
	for i, p := range projections {
		m[typeKey{p.WinRTNamespace, p.WinRTName}] = i
	}
	return m
}()

// ProjectType looks up the projection of a Windows Runtime type reference.
func ProjectType(namespace, name string) (Projection, bool) {
	i, ok := projectionIndex[typeKey{namespace, name}]
	if !ok {
		return Projection{}, false
	}
	return projections[i], true
}

// Projections returns a copy of the projection table sorted by
// Windows Runtime namespace and name.
func Projections() []Projection {
	out := make([]Projection, len(projections))
	copy(out, projections)
	sort.Slice(out, func(i, j int) bool {
		if out[i].WinRTNamespace != out[j].WinRTNamespace {
			return out[i].WinRTNamespace < out[j].WinRTNamespace
		}
		return out[i].WinRTName < out[j].WinRTName
	})
	return out
}
